package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/random"
	"github.com/robalobadob/sets/internal/rules"
)

// capBuilder deals the 16 cards that use only values 0 and 1; there is no
// set among them.
func capBuilder(cards.Mask, random.Source) (cards.Deck, error) {
	var out cards.Deck
	for _, c := range cards.All() {
		if c[0] < 2 && c[1] < 2 && c[2] < 2 && c[3] < 2 {
			out = append(out, c)
		}
	}
	return out, nil
}

func started(t *testing.T, mode Mode, opts ...Option) *Session {
	t.Helper()
	s, err := New(DefaultConfig(), mode, append([]Option{WithSeed(1)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, err := s.Start(); !ok || err != nil {
		t.Fatalf("Start = %v, %v", ok, err)
	}
	return s
}

// startedWithSet returns a playing session whose board holds at least one set.
func startedWithSet(t *testing.T, mode Mode) *Session {
	t.Helper()
	for seed := int64(1); seed < 100; seed++ {
		s, err := New(DefaultConfig(), mode, WithSeed(seed))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Start(); err != nil {
			t.Fatal(err)
		}
		if s.Board().SetExists() {
			if _, err := s.Step(); err != nil {
				t.Fatal(err)
			}
			return s
		}
	}
	t.Fatal("no seed produced a board with a set")
	return nil
}

func selectCards(t *testing.T, s *Session, cs ...cards.Card) {
	t.Helper()
	for _, c := range cs {
		p, ok := s.Board().PosOf(c)
		if !ok {
			t.Fatalf("%v not on board", c)
		}
		if _, err := s.ToggleCard(p); err != nil {
			t.Fatalf("ToggleCard(%v): %v", p, err)
		}
	}
}

func nonSet(t *testing.T, s *Session) []cards.Card {
	t.Helper()
	used := s.Board().Used()
	for i := 0; i < len(used); i++ {
		for j := i + 1; j < len(used); j++ {
			for k := j + 1; k < len(used); k++ {
				if ok, _ := rules.IsSet(used[i], used[j], used[k]); !ok {
					return []cards.Card{used[i], used[j], used[k]}
				}
			}
		}
	}
	t.Fatal("every triple is a set")
	return nil
}

func count(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(DefaultConfig(), Mode("expert")); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"Normal": ModeNormal, " quickstart ": ModeQuickstart} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode(""); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("empty mode err = %v", err)
	}
}

func TestStartQuickstart(t *testing.T) {
	s, err := New(DefaultConfig(), ModeQuickstart, WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateMenu {
		t.Fatalf("initial state %q", s.State())
	}
	if _, err := s.Start(); err != nil {
		t.Fatal(err)
	}
	v := s.Snapshot()
	if v.State != StatePlaying || v.DeckSize != 27 || len(v.Cards) != 12 || v.CardsRemaining != 15 || v.Score != 0 {
		t.Fatalf("snapshot %+v", v)
	}
	if s.Mask().Collapsed() != 1 {
		t.Fatalf("mask %v", s.Mask())
	}

	s2, _ := New(DefaultConfig(), ModeQuickstart, WithSeed(3), WithDeckBuilder(capBuilder))
	_, _ = s2.Start()
	events, _ := s2.Step()
	if events[0].Kind != EventStateChanged || events[0].State != StatePlaying {
		t.Fatalf("first event %+v", events[0])
	}
	if got := count(events, EventCardAdded); got != 12 {
		t.Fatalf("card_added = %d", got)
	}
}

func TestStartNormal(t *testing.T) {
	s := started(t, ModeNormal)
	if s.Snapshot().DeckSize != 81 || s.Mask().Collapsed() != 0 {
		t.Fatalf("deck %d mask %v", s.Snapshot().DeckSize, s.Mask())
	}
	if ok, _ := s.Start(); ok {
		t.Fatal("Start while playing should be a no-op")
	}
}

func TestValidMatchScoresAndReplaces(t *testing.T) {
	s := startedWithSet(t, ModeQuickstart)
	set := rules.AllSets(s.Board().Used())[0]
	used := len(s.Board().Used())
	remaining := s.Board().CardsRemaining()

	selectCards(t, s, set[:]...)
	if !s.Selection().Ready() {
		t.Fatal("selection not ready after three toggles")
	}
	events, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if s.Score() != 3 || s.Stats().Matches != 1 {
		t.Fatalf("score %d matches %d", s.Score(), s.Stats().Matches)
	}
	if s.Snapshot().DeckSize != 24 {
		t.Fatalf("deck size %d, want 24", s.Snapshot().DeckSize)
	}
	for _, c := range set {
		if _, ok := s.Board().PosOf(c); ok {
			t.Fatalf("matched card %v still on board", c)
		}
	}
	if s.State() == StatePlaying {
		if len(s.Board().Used()) != used || s.Board().CardsRemaining() != remaining-3 {
			t.Fatalf("used %d->%d remaining %d->%d", used, len(s.Board().Used()), remaining, s.Board().CardsRemaining())
		}
		if count(events, EventCardRemoved) != 3 || count(events, EventCardAdded) != 3 {
			t.Fatalf("events %+v", events)
		}
	}
	if len(s.Selection().Positions) != 0 {
		t.Fatal("selection not cleared")
	}
}

func TestMismatchFloorsAtZero(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	selectCards(t, s, nonSet(t, s)...)
	events, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if s.Score() != 0 || s.Stats().Mismatches != 1 {
		t.Fatalf("score %d mismatches %d", s.Score(), s.Stats().Mismatches)
	}
	if count(events, EventSelectionCleared) != 1 || count(events, EventScoreChanged) != 0 {
		t.Fatalf("events %+v", events)
	}
	if len(s.Selection().Positions) != 0 || len(s.Board().Used()) != 12 {
		t.Fatal("mismatch changed the board")
	}
}

func TestMismatchAfterMatch(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	selectCards(t, s, rules.AllSets(s.Board().Used())[0][:]...)
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.State() != StatePlaying {
		t.Skip("round ended after first match")
	}
	selectCards(t, s, nonSet(t, s)...)
	_, _ = s.Step()
	if s.Score() != 2 {
		t.Fatalf("score %d, want 2", s.Score())
	}
}

func TestAddExtraColumnTwice(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	if !s.AddExtraColumn() {
		t.Fatal("first AddExtraColumn returned false")
	}
	if n := len(s.Board().Used()); n != 15 {
		t.Fatalf("used %d, want 15", n)
	}
	if s.AddExtraColumn() {
		t.Fatal("second AddExtraColumn returned true")
	}
	if n := len(s.Board().Used()); n != 15 {
		t.Fatalf("board changed on second call: %d", n)
	}
	events, _ := s.Step()
	if count(events, EventCardAdded) != 3 {
		t.Fatalf("events %+v", events)
	}
}

func TestOverflowMatchCompacts(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	s.AddExtraColumn()
	_, _ = s.Step()
	set := rules.AllSets(s.Board().Used())[0]
	remaining := s.Board().CardsRemaining()

	selectCards(t, s, set[:]...)
	events, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if count(events, EventCardRemoved) < 3 {
		t.Fatalf("events %+v", events)
	}
	if s.State() != StatePlaying {
		return
	}
	if count(events, EventCardAdded) != 0 {
		t.Fatalf("overflow match drew replacements: %+v", events)
	}
	v := s.Snapshot()
	if v.Cols != 4 || len(v.Cards) != 12 || v.CardsRemaining != remaining {
		t.Fatalf("cols %d cards %d remaining %d->%d", v.Cols, len(v.Cards), remaining, v.CardsRemaining)
	}
	for _, pl := range v.Cards {
		if pl.Pos.Col >= 4 {
			t.Fatalf("card left in extra column: %v", pl)
		}
	}
}

func TestNoSetEndsRound(t *testing.T) {
	s := started(t, ModeNormal, WithDeckBuilder(capBuilder))
	if s.Board().SetExists() {
		t.Fatal("cap board has a set")
	}
	if h := s.RequestHint(); h.Found {
		t.Fatalf("hint on cap board: %+v", h)
	}
	events, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateEnded {
		t.Fatalf("state %q, want ended", s.State())
	}
	last := events[len(events)-1]
	if last.Kind != EventStateChanged || last.State != StateEnded {
		t.Fatalf("last event %+v", last)
	}
	if count(events, EventCardRemoved) != 12 || len(s.Board().Used()) != 0 {
		t.Fatal("board not cleared on end")
	}

	if sel, err := s.ToggleCard(board.Pos{}); err != nil || len(sel.Positions) != 0 {
		t.Fatalf("toggle in ended = %v, %v", sel, err)
	}
	if s.AddExtraColumn() || s.RequestHint().Found || s.SetsOnBoard() != 0 {
		t.Fatal("side command accepted in ended state")
	}
	if ok, _ := s.Start(); ok {
		t.Fatal("Start accepted in ended state")
	}
	if events, _ := s.Step(); len(events) != 0 {
		t.Fatalf("ended step emitted %+v", events)
	}

	if ok, err := s.Restart(true); !ok || err != nil {
		t.Fatalf("Restart = %v, %v", ok, err)
	}
	if s.State() != StatePlaying || s.Score() != 0 {
		t.Fatalf("after restart: %q score %d", s.State(), s.Score())
	}
}

func TestHintSelectsTwoCards(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	other := nonSet(t, s)[0]
	selectCards(t, s, other)

	h := s.RequestHint()
	if !h.Found || h.SetsRemaining != s.SetsOnBoard() || h.SetsRemaining < 1 {
		t.Fatalf("hint %+v", h)
	}
	sel := s.Selection()
	if len(sel.Positions) != 2 || sel.Positions[0] != h.Positions[0] || sel.Positions[1] != h.Positions[1] {
		t.Fatalf("selection %v, hint %v", sel.Positions, h.Positions)
	}
	if _, err := s.Step(); err != nil || s.Score() != 0 {
		t.Fatal("hint alone triggered evaluation")
	}

	third := rules.Third(h.Revealed[0], h.Revealed[1])
	selectCards(t, s, third)
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Score() != 3 || s.Stats().Hints != 1 {
		t.Fatalf("score %d hints %d", s.Score(), s.Stats().Hints)
	}
}

func TestRestartSwitchesMode(t *testing.T) {
	s := started(t, ModeQuickstart)
	if ok, err := s.Restart(false); !ok || err != nil {
		t.Fatalf("Restart = %v, %v", ok, err)
	}
	if s.Mode() != ModeNormal || s.Snapshot().DeckSize != 81 {
		t.Fatalf("mode %q deck %d", s.Mode(), s.Snapshot().DeckSize)
	}
	if ok, _ := s.Restart(true); !ok || s.Mode() != ModeNormal {
		t.Fatalf("same-mode restart changed mode to %q", s.Mode())
	}
}

func TestRestartClearsDailyTag(t *testing.T) {
	s := started(t, ModeQuickstart)
	s.Daily = "2026-10-14"
	if ok, err := s.Restart(true); !ok || err != nil {
		t.Fatalf("Restart = %v, %v", ok, err)
	}
	if s.Daily != "" || s.Seed != 1 {
		t.Fatalf("daily %q seed %d", s.Daily, s.Seed)
	}
}

func TestRestartDiscardsScore(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	selectCards(t, s, rules.AllSets(s.Board().Used())[0][:]...)
	_, _ = s.Step()
	if _, err := s.Restart(true); err != nil {
		t.Fatal(err)
	}
	events, _ := s.Step()
	if s.Score() != 0 || s.Stats().Matches != 0 || len(s.Selection().Positions) != 0 {
		t.Fatalf("score %d stats %+v", s.Score(), s.Stats())
	}
	if events[0].Kind != EventCardRemoved && events[0].Kind != EventStateChanged {
		t.Fatalf("first event %+v", events[0])
	}
}

func TestToMenu(t *testing.T) {
	s := started(t, ModeNormal)
	if !s.ToMenu() {
		t.Fatal("ToMenu returned false")
	}
	if s.State() != StateMenu || s.Board() != nil || s.Score() != 0 {
		t.Fatalf("state %q board %v score %d", s.State(), s.Board(), s.Score())
	}
	if s.ToMenu() {
		t.Fatal("ToMenu from menu returned true")
	}
	if ok, _ := s.Restart(true); ok {
		t.Fatal("Restart from menu returned true")
	}
	if sel, err := s.ToggleCard(board.Pos{}); err != nil || len(sel.Positions) != 0 {
		t.Fatal("toggle accepted in menu")
	}
	if ok, _ := s.SetMode(ModeQuickstart); !ok {
		t.Fatal("SetMode rejected in menu")
	}
	if _, err := s.Start(); err != nil || s.Snapshot().DeckSize != 27 {
		t.Fatalf("start after menu: %v deck %d", err, s.Snapshot().DeckSize)
	}
}

func TestSetModeOnlyInMenu(t *testing.T) {
	s := started(t, ModeNormal)
	if ok, err := s.SetMode(ModeQuickstart); ok || err != nil {
		t.Fatalf("SetMode while playing = %v, %v", ok, err)
	}
	if _, err := s.SetMode("hard"); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v", err)
	}
}

func TestToggleOutOfBounds(t *testing.T) {
	s := started(t, ModeNormal)
	if _, err := s.ToggleCard(board.Pos{Col: 6, Row: 0}); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeckInvariantAbortsStart(t *testing.T) {
	broken := func(cards.Mask, random.Source) (cards.Deck, error) {
		return nil, fmt.Errorf("%w: deck has 80 cards, want 81", cards.ErrInvariantViolation)
	}
	s, _ := New(DefaultConfig(), ModeNormal, WithSeed(1), WithDeckBuilder(broken))
	ok, err := s.Start()
	if ok || !errors.Is(err, cards.ErrInvariantViolation) {
		t.Fatalf("Start = %v, %v", ok, err)
	}
	if s.State() != StateMenu || s.Board() != nil {
		t.Fatalf("partially initialized: %q", s.State())
	}
}

func TestStatsDuration(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := []time.Time{t0, t0.Add(90 * time.Second)}
	now := func() time.Time {
		c := clock[0]
		clock = clock[1:]
		return c
	}
	s := started(t, ModeNormal, WithDeckBuilder(capBuilder), WithClock(now))
	if s.Stats().Duration() != 0 {
		t.Fatal("duration before end")
	}
	_, _ = s.Step()
	if d := s.Stats().Duration(); d != 90*time.Second {
		t.Fatalf("duration %v", d)
	}
}

func TestStepDrainsEvents(t *testing.T) {
	s := startedWithSet(t, ModeNormal)
	if events, _ := s.Step(); len(events) != 0 {
		t.Fatalf("second drain returned %+v", events)
	}
}
