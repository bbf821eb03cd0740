package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/sets/assets"
	"github.com/robalobadob/sets/internal/database"
	"github.com/robalobadob/sets/internal/httpserver"
	"github.com/robalobadob/sets/internal/store"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			db, err := database.Open("sets")
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db, assets.Migrations()); err != nil {
				return err
			}

			mem := store.NewMemoryStore()
			srv := httpserver.New(cfg, log.Logger, mem, db)
			log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting sets server")

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Run(ctx, ":"+cfg.Port) })
			g.Go(func() error { sweep(ctx, mem, cfg.SessionTTL); return nil })
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

// sweepEvery is the eviction interval for ttl, never below a second.
func sweepEvery(ttl time.Duration) time.Duration {
	if every := ttl / 4; every >= time.Second {
		return every
	}
	return time.Second
}

// sweep evicts idle sessions until ctx is done.
func sweep(ctx context.Context, mem *store.Memory, ttl time.Duration) {
	t := time.NewTicker(sweepEvery(ttl))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := mem.Sweep(ttl); n > 0 {
				log.Info().Int("sessions", n).Int("live", mem.Len()).Msg("evicted idle sessions")
			}
		}
	}
}
