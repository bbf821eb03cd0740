package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/player"
	"github.com/robalobadob/sets/internal/random"
)

type simulateOpts struct {
	mode     string
	rounds   int
	seed     int64
	bot      string
	mistakes int
	hints    int
	extra    bool
	maxTurns int
}

func newSimulateCmd() *cobra.Command {
	var o simulateOpts
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Let a bot play rounds and log the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mode, err := game.ParseMode(o.mode)
			if err != nil {
				return err
			}
			p, err := o.player()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				if o.seed, err = random.NewSeed(); err != nil {
					return err
				}
			}

			rules := cfg.Game.Rules()
			total := 0
			for i := 0; i < o.rounds; i++ {
				seed := o.seed + int64(i)
				s, err := game.New(rules, mode, game.WithSeed(seed), game.WithLogger(log.Logger))
				if err != nil {
					return err
				}
				sum, err := player.Play(s, p, random.New(seed), o.maxTurns)
				if errors.Is(err, player.ErrTurnLimit) {
					log.Warn().Int("round", i+1).Int64("seed", seed).Int("score", sum.Score).Msg("round cut at turn limit")
					continue
				}
				if err != nil {
					return fmt.Errorf("round %d (seed %d): %w", i+1, seed, err)
				}
				total += sum.Score
				log.Info().
					Int("round", i+1).
					Int64("seed", sum.Seed).
					Str("player", sum.Player).
					Str("mode", string(sum.Mode)).
					Int("score", sum.Score).
					Int("matches", sum.Matches).
					Int("mismatches", sum.Mismatches).
					Int("hints", sum.Hints).
					Int("turns", sum.Turns).
					Msg("round finished")
			}
			if o.rounds > 0 {
				log.Info().Int("rounds", o.rounds).Float64("avg_score", float64(total)/float64(o.rounds)).Msg("simulation done")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.mode, "mode", "m", string(game.ModeNormal), "quickstart or normal")
	f.IntVarP(&o.rounds, "rounds", "n", 1, "rounds to play")
	f.Int64Var(&o.seed, "seed", 0, "seed of the first round (random when unset)")
	f.StringVar(&o.bot, "bot", "solver", "solver or random")
	f.IntVar(&o.mistakes, "mistakes", 0, "percent of random picks (solver)")
	f.IntVar(&o.hints, "hints", 0, "percent of turns that ask for a hint (solver)")
	f.BoolVar(&o.extra, "extra", false, "draw the extra column once per round (solver)")
	f.IntVar(&o.maxTurns, "max-turns", 500, "turn limit per round")
	return cmd
}

func (o simulateOpts) player() (player.Player, error) {
	switch o.bot {
	case "solver":
		if o.mistakes < 0 || o.mistakes > 100 || o.hints < 0 || o.hints > 100 {
			return nil, fmt.Errorf("mistakes and hints are percentages, got %d and %d", o.mistakes, o.hints)
		}
		return &player.Solver{MistakePercent: o.mistakes, HintPercent: o.hints, ExtraColumn: o.extra}, nil
	case "random":
		return player.NewRandomBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot %q", o.bot)
	}
}
