package game

import "github.com/robalobadob/sets/internal/board"

// View is a read-only snapshot of a session for rendering.
type View struct {
	ID              string
	State           State
	Mode            Mode
	Score           int
	Rows            int
	Cols            int
	Cards           []board.Placement
	Selection       []board.Pos
	CardsRemaining  int
	DeckSize        int
	ExtraColumnUsed bool
	Stats           Stats
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() View {
	v := View{
		ID:    s.ID,
		State: s.state,
		Mode:  s.mode,
		Score: s.score,
		Stats: s.stats,
	}
	if s.board != nil {
		v.Rows = s.board.Rows()
		v.Cols = s.board.Cols()
		v.Cards = s.board.Placements()
		v.Selection = s.board.Selection()
		v.CardsRemaining = s.board.CardsRemaining()
		v.DeckSize = s.board.DeckSize()
		v.ExtraColumnUsed = s.board.ExtraColumnUsed()
	}
	return v
}
