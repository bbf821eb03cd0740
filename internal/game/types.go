// internal/game/types.go
//
// Core type definitions for the Sets game session.
// Defines:
//   - State / Mode: the session FSM states and difficulty modes.
//   - Config: rule constants threaded in at construction.
//   - Event: board/score/state changes emitted for the presentation layer.
//   - Selection, HintResult, Stats: command results and round counters.

package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
)

// State is the session's FSM state.
type State string

const (
	StateMenu    State = "menu"
	StatePlaying State = "playing"
	StateEnded   State = "ended"
)

// Mode selects how many attributes are in play.
//   - "quickstart": one random attribute collapsed, 27 cards.
//   - "normal":     all four attributes, 81 cards.
type Mode string

const (
	ModeQuickstart Mode = "quickstart"
	ModeNormal     Mode = "normal"
)

// ErrInvalidMode is returned for unknown mode names.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode validates a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuickstart, ModeNormal:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeNormal {
		return ModeQuickstart
	}
	return ModeNormal
}

// Config holds the rule constants for a session.
type Config struct {
	Layout          board.Layout // canonical grid (rows x cols)
	MatchBonus      int          // added on a valid set
	MismatchPenalty int          // subtracted on an invalid triple, floored at 0
}

// DefaultConfig is the classic 3x4 board, +3 per set, -1 per miss.
func DefaultConfig() Config {
	return Config{
		Layout:          board.Layout{Rows: 3, Cols: 4},
		MatchBonus:      3,
		MismatchPenalty: 1,
	}
}

// EventKind names a change the presentation layer should render.
type EventKind string

const (
	EventCardAdded        EventKind = "card_added"
	EventCardRemoved      EventKind = "card_removed"
	EventCardMoved        EventKind = "card_moved"
	EventScoreChanged     EventKind = "score_changed"
	EventStateChanged     EventKind = "state_changed"
	EventSelectionCleared EventKind = "selection_cleared"
)

// Event is one board/score/state change. Only the fields relevant to Kind
// are set: Card+Pos for card events (plus From for moves), Score for
// score_changed, State for state_changed.
type Event struct {
	Kind  EventKind
	Card  cards.Card
	Pos   board.Pos
	From  board.Pos
	Score int
	State State
}

// Selection is the player's current marking.
type Selection struct {
	Positions []board.Pos
	Cards     []cards.Card
}

// Ready reports whether the selection is due for evaluation.
func (s Selection) Ready() bool { return len(s.Positions) == board.MaxSelection }

// HintResult is the answer to a hint request.
type HintResult struct {
	Found         bool
	SetsRemaining int           // valid sets currently on the board
	Revealed      [2]cards.Card // two of the three cards of one set
	Positions     [2]board.Pos  // where the revealed cards sit
}

// Stats are per-round counters.
type Stats struct {
	Matches    int
	Mismatches int
	Hints      int
	StartedAt  time.Time
	EndedAt    time.Time
}

// Duration is the round length; zero while the round is running.
func (s Stats) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
