// internal/player/play.go
//
// Drives a session with a Player until the round ends or the turn budget
// runs out. Used by the simulate command and by tests.

package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/random"
)

// ErrTurnLimit is returned when the round is still running after maxTurns.
var ErrTurnLimit = errors.New("turn limit reached")

// Summary describes one simulated round.
type Summary struct {
	Player     string
	Mode       game.Mode
	Seed       int64
	Score      int
	Matches    int
	Mismatches int
	Hints      int
	Turns      int
	Duration   time.Duration
}

// Play starts s if needed and lets p move until the round ends.
func Play(s *game.Session, p Player, rng random.Source, maxTurns int) (Summary, error) {
	if s.State() == game.StateMenu {
		if _, err := s.Start(); err != nil {
			return Summary{}, err
		}
	}
	if _, err := s.Step(); err != nil {
		return Summary{}, err
	}

	turns := 0
	for s.State() == game.StatePlaying {
		if turns == maxTurns {
			return summarize(s, p, turns), fmt.Errorf("%w: %d", ErrTurnLimit, maxTurns)
		}
		turns++
		if err := apply(s, p.Choose(s.Snapshot(), rng)); err != nil {
			return summarize(s, p, turns), err
		}
		if _, err := s.Step(); err != nil {
			return summarize(s, p, turns), err
		}
	}
	return summarize(s, p, turns), nil
}

func apply(s *game.Session, mv Move) error {
	switch mv.Kind {
	case MoveHint:
		s.RequestHint()
	case MoveExtraColumn:
		s.AddExtraColumn()
	case MoveSelect:
		want := make(map[board.Pos]bool, len(mv.Positions))
		for _, p := range mv.Positions {
			want[p] = true
		}
		// drop what is selected but not wanted, then add the rest
		for _, p := range s.Selection().Positions {
			if want[p] {
				delete(want, p)
				continue
			}
			if _, err := s.ToggleCard(p); err != nil {
				return err
			}
		}
		for _, p := range mv.Positions {
			if !want[p] {
				continue
			}
			if _, err := s.ToggleCard(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func summarize(s *game.Session, p Player, turns int) Summary {
	st := s.Stats()
	return Summary{
		Player:     p.Name(),
		Mode:       s.Mode(),
		Seed:       s.Seed,
		Score:      s.Score(),
		Matches:    st.Matches,
		Mismatches: st.Mismatches,
		Hints:      st.Hints,
		Turns:      turns,
		Duration:   st.Duration(),
	}
}
