// internal/httpserver/server.go
//
// HTTP server wiring for the Sets backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, JSON, CORS, timeouts,
//     panic recovery).
//   - Public endpoints: "/", "/health".
//   - Session endpoints (optional auth): /sessions/*.
//   - Leaderboard (public) and auth/profile endpoints: /leaderboard, /auth/*,
//     /rounds/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every session belongs to the caller that created it: a player id when
//     logged in, otherwise the anonymous cookie id.
//   - Finished rounds are written to the results store while the session is
//     still locked, so each round is recorded exactly once.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/sets/internal/accounts"
	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/cards"
	"github.com/robalobadob/sets/internal/config"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/results"
	"github.com/robalobadob/sets/internal/rules"
	"github.com/robalobadob/sets/internal/store"
)

// Server bundles router, session store and database-backed stores.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	log      zerolog.Logger
	store    store.Store
	accounts *accounts.Store
	results  *results.Store
	now      func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now (daily seeds, token expiry).
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, log zerolog.Logger, st store.Store, db *sql.DB, opts ...Option) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		log:      log,
		store:    st,
		accounts: accounts.NewStore(db),
		results:  results.NewStore(db),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log))              // request-scoped logger
	s.r.Use(accessLog)                         // one line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"sets-go","endpoints":["/health","POST /sessions","/sessions/{id}/*","/leaderboard","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Sessions - OPTIONAL AUTH (guests can play)
	s.r.With(s.withOptionalAuth()).Route("/sessions", s.mountSessions)

	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return s
}

// Run serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers {"error":"<code>"}.
func writeError(w http.ResponseWriter, status int, code string) {
	http.Error(w, `{"error":"`+code+`"}`, status)
}

// writeErr maps domain errors to status codes.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "invalid_mode")
	case errors.Is(err, board.ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, "out_of_bounds")
	case errors.Is(err, board.ErrEmptySlot):
		writeError(w, http.StatusBadRequest, "empty_slot")
	case errors.Is(err, cards.ErrInvariantViolation), errors.Is(err, rules.ErrInvalidArity):
		hlog.FromRequest(r).Error().Err(err).Msg("invariant violation")
		writeError(w, http.StatusInternalServerError, "invariant_violation")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
