// internal/game/session.go
//
// Game session state machine for one player.
// Responsibilities:
//   - Menu → Playing on Start (deck build + deal + score reset).
//   - Playing: evaluate a full selection on Step, replace or compact matched
//     cards, adjust score, end the round when no set is left.
//   - Side commands: hint, extra column, restart, back to menu.
//   - Queue Events for the presentation layer; Step drains them.
//
// Notes:
//   - A Session is single-writer: callers serialize commands (see store.Update).
//   - Deck construction failures are invariant violations; the session stays
//     in Menu and the error is returned to the caller.
//   - Commands that do not apply to the current state are no-ops reported as
//     false / empty results.

package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/random"
	"github.com/robalobadob/sets/internal/rules"
)

// DeckBuilder produces the deck for a mask. cards.Build is the default.
type DeckBuilder func(mask cards.Mask, rng random.Source) (cards.Deck, error)

// Session holds the state of a single game session across rounds.
type Session struct {
	ID    string // unique session identifier
	Owner string // player or anonymous id, set by the shell
	Daily string // YYYY-MM-DD when playing the daily challenge
	Seed  int64  // seed of the random source, when known

	cfg   Config
	rng   random.Source
	log   zerolog.Logger
	build DeckBuilder
	now   func() time.Time

	state  State
	mode   Mode
	mask   cards.Mask
	board  *board.Board
	score  int
	stats  Stats
	events []Event
}

// Option customizes a Session at construction.
type Option func(*Session)

// WithSeed seeds a deterministic random source and records the seed.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rng = random.New(seed)
		s.Seed = seed
	}
}

// WithLogger attaches a logger; sessions are silent by default.
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithDeckBuilder replaces cards.Build (tests inject fixed decks).
func WithDeckBuilder(b DeckBuilder) Option { return func(s *Session) { s.build = b } }

// WithClock replaces time.Now for round statistics.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New creates a session in the Menu state with mode preselected.
func New(cfg Config, mode Mode, opts ...Option) (*Session, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	s := &Session{
		ID:    uuid.NewString(),
		cfg:   cfg,
		log:   zerolog.Nop(),
		build: cards.Build,
		now:   time.Now,
		state: StateMenu,
		mode:  mode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		rng, seed, err := random.NewRandom()
		if err != nil {
			return nil, err
		}
		s.rng, s.Seed = rng, seed
	}
	s.log = s.log.With().Str("session", s.ID).Logger()
	return s, nil
}

// State returns the current FSM state.
func (s *Session) State() State { return s.state }

// Mode returns the selected mode.
func (s *Session) Mode() Mode { return s.mode }

// Mask returns the attribute mask of the current round.
func (s *Session) Mask() cards.Mask { return s.mask }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Stats returns the counters of the current (or last) round.
func (s *Session) Stats() Stats { return s.stats }

// Board exposes the live board for read-only inspection; nil in Menu.
func (s *Session) Board() *board.Board { return s.board }

// Config returns the rule constants of the session.
func (s *Session) Config() Config { return s.cfg }

// SetMode changes the selected mode. It only applies in Menu.
func (s *Session) SetMode(m Mode) (bool, error) {
	if _, err := ParseMode(string(m)); err != nil {
		return false, err
	}
	if s.state != StateMenu {
		return false, nil
	}
	s.mode = m
	return true, nil
}

// Start leaves the Menu and deals a new round in the selected mode.
func (s *Session) Start() (bool, error) {
	if s.state != StateMenu {
		return false, nil
	}
	if err := s.begin(); err != nil {
		return false, err
	}
	return true, nil
}

// Restart tears the round down and deals a fresh one, in the same mode or
// in the other mode. It is a no-op from the Menu. The fresh deal comes from
// the advanced random source, so the round loses its daily tag.
func (s *Session) Restart(sameMode bool) (bool, error) {
	if s.state == StateMenu {
		return false, nil
	}
	s.teardown()
	s.Daily = ""
	if !sameMode {
		s.mode = s.mode.Other()
	}
	if err := s.begin(); err != nil {
		s.state = StateMenu
		s.emit(Event{Kind: EventStateChanged, State: StateMenu})
		return false, err
	}
	return true, nil
}

// ToMenu discards the board, deck and score and returns to the Menu.
func (s *Session) ToMenu() bool {
	if s.state == StateMenu {
		return false
	}
	s.teardown()
	s.state = StateMenu
	s.emit(Event{Kind: EventStateChanged, State: StateMenu})
	s.log.Debug().Msg("to menu")
	return true
}

// ToggleCard marks or unmarks the card at p. Outside Playing it is a no-op.
func (s *Session) ToggleCard(p board.Pos) (Selection, error) {
	if s.state != StatePlaying {
		return Selection{}, nil
	}
	if _, err := s.board.Toggle(p); err != nil {
		return s.selection(), err
	}
	return s.selection(), nil
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	if s.board == nil {
		return Selection{}
	}
	return s.selection()
}

func (s *Session) selection() Selection {
	return Selection{Positions: s.board.Selection(), Cards: s.board.SelectedCards()}
}

// Step evaluates a full selection, checks for the end of the round and
// returns every event queued since the previous Step.
func (s *Session) Step() ([]Event, error) {
	if s.state == StatePlaying {
		if len(s.board.Selection()) == board.MaxSelection {
			if err := s.resolve(); err != nil {
				return s.drain(), err
			}
		}
		if !s.board.SetExists() {
			s.end()
		}
	}
	return s.drain(), nil
}

// RequestHint reveals two cards of a random valid set and marks them as the
// selection. A third toggle by the player triggers evaluation as usual.
func (s *Session) RequestHint() HintResult {
	if s.state != StatePlaying {
		return HintResult{}
	}
	h, ok := rules.FindHint(s.board.Used(), s.rng)
	if !ok {
		return HintResult{}
	}
	pair := h.Revealed()
	res := HintResult{Found: true, SetsRemaining: h.Count, Revealed: pair}
	for i, c := range pair {
		res.Positions[i], _ = s.board.PosOf(c)
	}
	s.board.Select(res.Positions[0], res.Positions[1])
	s.stats.Hints++
	s.log.Debug().Int("sets", h.Count).Msg("hint")
	return res
}

// SetsOnBoard counts the valid sets currently visible.
func (s *Session) SetsOnBoard() int {
	if s.state != StatePlaying {
		return 0
	}
	return s.board.CountSets()
}

// AddExtraColumn draws the one-time extra column. It reports false when not
// playing or when the column was already used this round.
func (s *Session) AddExtraColumn() bool {
	if s.state != StatePlaying {
		return false
	}
	placed, ok := s.board.AddExtraColumn()
	if !ok {
		return false
	}
	for _, pl := range placed {
		s.emit(Event{Kind: EventCardAdded, Card: pl.Card, Pos: pl.Pos})
	}
	s.log.Debug().Int("cards", len(placed)).Msg("extra column")
	return true
}

// begin builds the deck, deals the board and enters Playing. On error the
// session is left without a board.
func (s *Session) begin() error {
	mask := cards.FullMask()
	if s.mode == ModeQuickstart {
		mask = cards.CollapseOne(s.rng)
	}
	deck, err := s.build(mask, s.rng)
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}
	b, err := board.New(deck, s.cfg.Layout, s.rng)
	if err != nil {
		return fmt.Errorf("new board: %w", err)
	}

	s.mask, s.board, s.score = mask, b, 0
	s.stats = Stats{StartedAt: s.now()}
	s.state = StatePlaying
	s.emit(Event{Kind: EventStateChanged, State: StatePlaying})
	for _, pl := range b.Deal() {
		s.emit(Event{Kind: EventCardAdded, Card: pl.Card, Pos: pl.Pos})
	}
	s.emit(Event{Kind: EventScoreChanged, Score: 0})
	s.log.Debug().Str("mode", string(s.mode)).Int("deck", len(deck)).Msg("round started")
	return nil
}

// resolve evaluates the three selected cards.
func (s *Session) resolve() error {
	picked := s.board.SelectedCards()
	ok, err := rules.IsSet(picked...)
	if err != nil {
		s.board.ClearSelection()
		return err
	}

	prev := s.score
	if ok {
		s.score += s.cfg.MatchBonus
		s.stats.Matches++
		replace := !s.board.Overflow()
		for _, c := range picked {
			removed, added, err := s.board.ReplaceAt(c, replace)
			if err != nil {
				return err
			}
			s.emit(Event{Kind: EventCardRemoved, Card: removed.Card, Pos: removed.Pos})
			if added != nil {
				s.emit(Event{Kind: EventCardAdded, Card: added.Card, Pos: added.Pos})
			}
		}
		if !replace {
			moves, added := s.board.Compact()
			for _, m := range moves {
				s.emit(Event{Kind: EventCardMoved, Card: m.Card, From: m.From, Pos: m.To})
			}
			for _, pl := range added {
				s.emit(Event{Kind: EventCardAdded, Card: pl.Card, Pos: pl.Pos})
			}
		}
		s.log.Debug().Int("score", s.score).Int("left", s.board.CardsRemaining()).Msg("found a set")
	} else {
		s.score -= s.cfg.MismatchPenalty
		if s.score < 0 {
			s.score = 0
		}
		s.stats.Mismatches++
		s.emit(Event{Kind: EventSelectionCleared})
		s.log.Debug().Int("score", s.score).Msg("not a set")
	}
	s.board.ClearSelection()

	if s.score != prev {
		s.emit(Event{Kind: EventScoreChanged, Score: s.score})
	}
	return nil
}

// end clears the board and enters Ended.
func (s *Session) end() {
	for _, pl := range s.board.Clear() {
		s.emit(Event{Kind: EventCardRemoved, Card: pl.Card, Pos: pl.Pos})
	}
	s.state = StateEnded
	s.stats.EndedAt = s.now()
	s.emit(Event{Kind: EventStateChanged, State: StateEnded})
	s.log.Debug().Int("score", s.score).Int("matches", s.stats.Matches).Msg("round ended")
}

// teardown drops all round state. Cards still on the board are reported
// as removed.
func (s *Session) teardown() {
	if s.board != nil {
		for _, pl := range s.board.Clear() {
			s.emit(Event{Kind: EventCardRemoved, Card: pl.Card, Pos: pl.Pos})
		}
	}
	s.board = nil
	s.mask = cards.Mask{}
	s.score = 0
	s.stats = Stats{}
}

func (s *Session) emit(e Event) { s.events = append(s.events, e) }

func (s *Session) drain() []Event {
	out := s.events
	s.events = nil
	return out
}
