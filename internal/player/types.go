package player

import (
	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/random"
)

// Player decides the next move from a snapshot of the session.
type Player interface {
	Name() string
	Choose(v game.View, rng random.Source) Move
}

// MoveKind tells Play what to do with a Move.
type MoveKind int

const (
	MovePass MoveKind = iota
	MoveSelect
	MoveHint
	MoveExtraColumn
)

func (k MoveKind) String() string {
	switch k {
	case MoveSelect:
		return "select"
	case MoveHint:
		return "hint"
	case MoveExtraColumn:
		return "extra_column"
	default:
		return "pass"
	}
}

// Move is one decision. Positions is the full selection for MoveSelect.
type Move struct {
	Kind      MoveKind
	Positions []board.Pos
}
