// internal/results/results.go
//
// Finished rounds and the leaderboard.
// Responsibilities:
//   - Record each finished round (owner, mode, score, stats, daily date).
//   - Leaderboard per mode, optionally restricted to one daily date:
//     score DESC, duration ASC, earliest finish first.
//   - Recent rounds of one owner, and moving guest rounds to an account.
//
// A daily round counts once per owner and date; later attempts are ignored.

package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/sets/internal/game"
)

// DefaultLimit caps leaderboard and history queries.
const DefaultLimit = 20

// Round is one finished round.
type Round struct {
	SessionID  string        `json:"sessionId"`
	OwnerID    string        `json:"ownerId"`
	Anonymous  bool          `json:"anonymous"`
	Mode       game.Mode     `json:"mode"`
	Score      int           `json:"score"`
	Matches    int           `json:"matches"`
	Mismatches int           `json:"mismatches"`
	Hints      int           `json:"hints"`
	DailyDate  string        `json:"dailyDate,omitempty"`
	Seed       int64         `json:"seed"`
	StartedAt  time.Time     `json:"startedAt"`
	EndedAt    time.Time     `json:"endedAt"`
	Duration   time.Duration `json:"-"`
}

// FromSession captures the finished round of s.
func FromSession(s *game.Session, anonymous bool) Round {
	st := s.Stats()
	return Round{
		SessionID:  s.ID,
		OwnerID:    s.Owner,
		Anonymous:  anonymous,
		Mode:       s.Mode(),
		Score:      s.Score(),
		Matches:    st.Matches,
		Mismatches: st.Mismatches,
		Hints:      st.Hints,
		DailyDate:  s.Daily,
		Seed:       s.Seed,
		StartedAt:  st.StartedAt,
		EndedAt:    st.EndedAt,
		Duration:   st.Duration(),
	}
}

// Entry is one leaderboard row. Guests have an empty Player name; their
// owner id is never exposed.
type Entry struct {
	OwnerID    string `json:"-"`
	Player     string `json:"player"`
	Anonymous  bool   `json:"anonymous"`
	Score      int    `json:"score"`
	Matches    int    `json:"matches"`
	Hints      int    `json:"hints"`
	DurationMs int64  `json:"durationMs"`
	DailyDate  string `json:"dailyDate,omitempty"`
}

// Store reads and writes the rounds table.
type Store struct{ db *sql.DB }

// NewStore wraps db. The rounds table must exist.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records r. It reports false when a daily round for the same owner
// and date already exists.
func (s *Store) Insert(ctx context.Context, r Round) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (session_id, owner_id, anonymous, mode, score, matches, mismatches, hints,
             daily_date, seed, started_at, ended_at, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.OwnerID, r.Anonymous, string(r.Mode), r.Score, r.Matches, r.Mismatches, r.Hints,
		r.DailyDate, r.Seed, r.StartedAt.UTC().Format(time.RFC3339Nano), r.EndedAt.UTC().Format(time.RFC3339Nano),
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return false, fmt.Errorf("insert round: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Query selects a leaderboard.
type Query struct {
	Mode  game.Mode
	Date  string // daily date; empty means every round of the mode
	Limit int
}

// Leaderboard returns the best rounds for q.
func (s *Store) Leaderboard(ctx context.Context, q Query) ([]Entry, error) {
	if q.Limit <= 0 || q.Limit > DefaultLimit {
		q.Limit = DefaultLimit
	}
	where, args := `r.mode=?`, []any{string(q.Mode)}
	if q.Date != "" {
		where += ` AND r.daily_date=?`
		args = append(args, q.Date)
	}
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, `
        SELECT r.owner_id, COALESCE(p.username, ''), r.anonymous, r.score, r.matches, r.hints,
               r.duration_ms, r.daily_date
        FROM rounds r
        LEFT JOIN players p ON p.id = r.owner_id AND r.anonymous = 0
        WHERE `+where+`
        ORDER BY r.score DESC, r.duration_ms ASC, r.ended_at ASC
        LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, q.Limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.OwnerID, &e.Player, &e.Anonymous, &e.Score, &e.Matches, &e.Hints, &e.DurationMs, &e.DailyDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ByOwner returns the most recent rounds of ownerID, newest first.
func (s *Store) ByOwner(ctx context.Context, ownerID string, limit int) ([]Round, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, owner_id, anonymous, mode, score, matches, mismatches, hints,
               daily_date, seed, started_at, ended_at, duration_ms
        FROM rounds WHERE owner_id=?
        ORDER BY ended_at DESC, id DESC
        LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var (
			r              Round
			mode           string
			started, ended string
			ms             int64
		)
		if err := rows.Scan(&r.SessionID, &r.OwnerID, &r.Anonymous, &mode, &r.Score, &r.Matches, &r.Mismatches,
			&r.Hints, &r.DailyDate, &r.Seed, &started, &ended, &ms); err != nil {
			return nil, err
		}
		r.Mode = game.Mode(mode)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves the guest rounds of anonID to playerID. Daily rounds the
// player already has for the same date stay with the guest id.
func (s *Store) Claim(ctx context.Context, anonID, playerID string) (int64, error) {
	if anonID == "" || playerID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE OR IGNORE rounds SET owner_id=?, anonymous=0
        WHERE owner_id=? AND anonymous=1`, playerID, anonID)
	if err != nil {
		return 0, fmt.Errorf("claim rounds: %w", err)
	}
	return res.RowsAffected()
}
