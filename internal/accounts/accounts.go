// internal/accounts/accounts.go
//
// Player accounts.
// Responsibilities:
//   - Validate and normalize usernames / passwords on signup.
//   - Hash passwords with bcrypt and verify them on login.
//   - CRUD on the players table plus per-player round counters.

package accounts

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalid wraps signup validation failures.
	ErrInvalid = errors.New("invalid signup")
	// ErrTaken is returned when the username already exists (case-insensitive).
	ErrTaken = errors.New("username taken")
	// ErrNotFound is returned for unknown players.
	ErrNotFound = errors.New("player not found")
	// ErrBadCredentials is returned by Authenticate on a wrong name or password.
	ErrBadCredentials = errors.New("invalid username or password")
)

// Account matches the players table shape.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	RoundsPlayed int       `json:"roundsPlayed"`
	BestScore    int       `json:"bestScore"`
}

// Store reads and writes players.
type Store struct{ db *sql.DB }

// NewStore wraps db. The players table must exist.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create validates input, checks uniqueness, hashes the password and inserts
// a new player.
func (s *Store) Create(ctx context.Context, username, pw string) (*Account, error) {
	username = Normalize(username)
	if err := Validate(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM players WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p := &Account{
		ID:           NewID(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// insert writes p. A concurrent signup that won the unique index is
// reported as ErrTaken.
func (s *Store) insert(ctx context.Context, p *Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, p.PasswordHash, p.CreatedAt.Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrTaken
	}
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// Authenticate returns the player when username and password match.
func (s *Store) Authenticate(ctx context.Context, username, pw string) (*Account, error) {
	p, err := s.ByUsername(ctx, Normalize(username))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(pw)) != nil {
		return nil, ErrBadCredentials
	}
	return p, nil
}

// ByUsername loads a player by name, case-insensitively.
func (s *Store) ByUsername(ctx context.Context, username string) (*Account, error) {
	return scan(s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, rounds_played, best_score
	                                       FROM players WHERE lower(username)=lower(?)`, username))
}

// ByID loads a player by id.
func (s *Store) ByID(ctx context.Context, id string) (*Account, error) {
	return scan(s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, rounds_played, best_score
	                                       FROM players WHERE id=?`, id))
}

// RecordRound bumps the round counter and keeps the best score.
func (s *Store) RecordRound(ctx context.Context, id string, score int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET rounds_played = rounds_played + 1, best_score = max(best_score, ?) WHERE id=?`,
		score, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row *sql.Row) (*Account, error) {
	var p Account
	var created string
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &created, &p.RoundsPlayed, &p.BestScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}

// Normalize trims whitespace around a username.
func Normalize(u string) string { return strings.TrimSpace(u) }

// Validate enforces basic username/password rules.
func Validate(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return fmt.Errorf("%w: username must be 3-24 chars", ErrInvalid)
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: username: letters, numbers, underscore only", ErrInvalid)
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return fmt.Errorf("%w: password must be 8-72 chars", ErrInvalid)
	}
	return nil
}

// NewID creates a 22-char URL-safe, crypto-random identifier (no padding).
func NewID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
