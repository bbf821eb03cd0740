package player

import (
	"strconv"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/random"
	"github.com/robalobadob/sets/internal/rules"
)

// RandomBot picks three random cards every turn.
type RandomBot struct {
	BotName string
}

func (b *RandomBot) Name() string {
	if b.BotName == "" {
		b.BotName = "RandomBot"
	}
	return b.BotName
}

func (b *RandomBot) Choose(v game.View, rng random.Source) Move {
	return randomPick(v, rng)
}

func NewRandomBot() Player {
	return &RandomBot{}
}

// Solver always finds a set, except for the configured share of deliberate
// random picks. It uses hints and the extra column when told to.
type Solver struct {
	BotName string
	// MistakePercent of turns are random picks (0..100).
	MistakePercent int
	// HintPercent of turns start by asking for a hint (0..100).
	HintPercent int
	// ExtraColumn draws the extra column as soon as cards allow.
	ExtraColumn bool
}

func (s *Solver) Name() string {
	if s.BotName == "" {
		s.BotName = "Solver_" + strconv.Itoa(s.MistakePercent)
	}
	return s.BotName
}

func (s *Solver) Choose(v game.View, rng random.Source) Move {
	at := byCard(v)

	// complete a hinted pair
	if len(v.Selection) == 2 {
		a, aok := cardAt(v, v.Selection[0])
		b, bok := cardAt(v, v.Selection[1])
		if aok && bok {
			if p, ok := at[rules.Third(a, b)]; ok {
				return Move{Kind: MoveSelect, Positions: []board.Pos{v.Selection[0], v.Selection[1], p}}
			}
		}
	}
	if s.ExtraColumn && !v.ExtraColumnUsed && v.CardsRemaining > 0 {
		return Move{Kind: MoveExtraColumn}
	}
	if roll(rng, s.HintPercent) {
		return Move{Kind: MoveHint}
	}
	if roll(rng, s.MistakePercent) {
		return randomPick(v, rng)
	}

	used := make([]cards.Card, len(v.Cards))
	for i, pl := range v.Cards {
		used[i] = pl.Card
	}
	sets := rules.AllSets(used)
	if len(sets) == 0 {
		return Move{Kind: MovePass}
	}
	set := sets[rng.Intn(len(sets))]
	return Move{Kind: MoveSelect, Positions: []board.Pos{at[set[0]], at[set[1]], at[set[2]]}}
}

func NewSolver() Player {
	return &Solver{}
}

func roll(rng random.Source, percent int) bool {
	return percent > 0 && rng.Intn(100) < percent
}

func randomPick(v game.View, rng random.Source) Move {
	if len(v.Cards) < board.MaxSelection {
		return Move{Kind: MovePass}
	}
	idx := make([]int, len(v.Cards))
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	out := make([]board.Pos, board.MaxSelection)
	for i := range out {
		out[i] = v.Cards[idx[i]].Pos
	}
	return Move{Kind: MoveSelect, Positions: out}
}

func byCard(v game.View) map[cards.Card]board.Pos {
	m := make(map[cards.Card]board.Pos, len(v.Cards))
	for _, pl := range v.Cards {
		m[pl.Card] = pl.Pos
	}
	return m
}

func cardAt(v game.View, p board.Pos) (cards.Card, bool) {
	for _, pl := range v.Cards {
		if pl.Pos == p {
			return pl.Card, true
		}
	}
	return cards.Card{}, false
}
