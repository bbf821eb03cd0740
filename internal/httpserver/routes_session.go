// internal/httpserver/routes_session.go
//
// HTTP routes for game sessions, mounted under /sessions:
//   - POST /sessions                   → create (and by default start) a session
//   - GET  /sessions/{id}              → snapshot
//   - DELETE /sessions/{id}            → drop the session
//   - POST /sessions/{id}/mode         → select mode while in the menu
//   - POST /sessions/{id}/start        → menu → playing
//   - POST /sessions/{id}/toggle       → toggle a card, then step
//   - POST /sessions/{id}/step         → evaluate a full selection / end check
//   - POST /sessions/{id}/hint         → reveal two cards of a set
//   - POST /sessions/{id}/sets         → count sets on the board
//   - POST /sessions/{id}/extra-column → one extra column per round
//   - POST /sessions/{id}/restart      → new round, same or other mode
//   - POST /sessions/{id}/menu         → back to the menu
//
// Every command runs inside store.Update and is followed by one Step, so the
// response carries the snapshot plus all events the command produced.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/daily"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/results"
	"github.com/robalobadob/sets/internal/store"
)

// newSessionReq is the payload for POST /sessions.
type newSessionReq struct {
	Mode  string `json:"mode"`  // "quickstart" (default) | "normal"
	Start *bool  `json:"start"` // default true
	Seed  *int64 `json:"seed"`  // fixed seed for a reproducible deal
	Daily bool   `json:"daily"` // today's challenge; overrides seed
}

// commandRes is the answer to every session command.
type commandRes struct {
	Applied bool        `json:"applied"`
	Session sessionView `json:"session"`
	Events  []eventView `json:"events"`
	Hint    *hintView   `json:"hint,omitempty"`
	Sets    *int        `json:"sets,omitempty"`
	Saved   bool        `json:"saved,omitempty"`
}

// mountSessions registers all /sessions routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Post("/", s.handleNewSession)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/mode", s.handleMode)
		r.Post("/start", s.command(func(g *game.Session, res *commandRes) error {
			ok, err := g.Start()
			res.Applied = ok
			return err
		}))
		r.Post("/toggle", s.handleToggle)
		r.Post("/step", s.command(func(*game.Session, *commandRes) error { return nil }))
		r.Post("/hint", s.command(func(g *game.Session, res *commandRes) error {
			h := g.RequestHint()
			res.Applied, res.Hint = h.Found, newHintView(h)
			return nil
		}))
		r.Post("/sets", s.command(func(g *game.Session, res *commandRes) error {
			n := g.SetsOnBoard()
			res.Applied, res.Sets = g.State() == game.StatePlaying, &n
			return nil
		}))
		r.Post("/extra-column", s.command(func(g *game.Session, res *commandRes) error {
			res.Applied = g.AddExtraColumn()
			return nil
		}))
		r.Post("/restart", s.handleRestart)
		r.Post("/menu", s.command(func(g *game.Session, res *commandRes) error {
			res.Applied = g.ToMenu()
			return nil
		}))
	})
}

// handleNewSession creates a session owned by the caller.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode := game.ModeQuickstart
	if req.Mode != "" {
		m, err := game.ParseMode(req.Mode)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		mode = m
	}

	opts := []game.Option{game.WithLogger(s.log)}
	var dailyKey string
	switch {
	case req.Daily:
		now := s.now()
		dailyKey = daily.DateKey(now)
		opts = append(opts, game.WithSeed(daily.Seed(now, s.cfg.DailySalt)))
	case req.Seed != nil:
		opts = append(opts, game.WithSeed(*req.Seed))
	}
	g, err := game.New(s.cfg.Game.Rules(), mode, opts...)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	g.Owner, _ = s.callerID(w, r)
	g.Daily = dailyKey

	res := commandRes{Applied: true}
	if req.Start == nil || *req.Start {
		if _, err := g.Start(); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}
	if err := s.finish(r, g, &res); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		s.writeErr(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("session", g.ID).Str("mode", string(mode)).Str("daily", dailyKey).Msg("session created")
	writeJSON(w, http.StatusCreated, res)
}

// handleGetSession returns a snapshot without stepping.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	err := s.update(w, r, func(g *game.Session) error {
		view = newSessionView(g)
		return nil
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteSession drops the caller's session. An unfinished round is
// discarded without being recorded.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := s.update(w, r, func(g *game.Session) error {
		id = g.ID
		return nil
	}); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("session", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

type modeReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	m, err := game.ParseMode(req.Mode)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.command(func(g *game.Session, res *commandRes) error {
		ok, err := g.SetMode(m)
		res.Applied = ok
		return err
	})(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var p board.Pos
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.command(func(g *game.Session, res *commandRes) error {
		_, err := g.ToggleCard(p)
		res.Applied = err == nil && g.State() == game.StatePlaying
		return err
	})(w, r)
}

type restartReq struct {
	SameMode *bool `json:"sameMode"` // default true
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req restartReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	same := req.SameMode == nil || *req.SameMode
	s.command(func(g *game.Session, res *commandRes) error {
		ok, err := g.Restart(same)
		res.Applied = ok
		return err
	})(w, r)
}

// command wraps fn into a handler: lock the caller's session, run fn, step,
// record a finished round and answer with the result.
func (s *Server) command(fn func(*game.Session, *commandRes) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res commandRes
		err := s.update(w, r, func(g *game.Session) error {
			if err := fn(g, &res); err != nil {
				return err
			}
			return s.finish(r, g, &res)
		})
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// update runs fn under the store lock after checking the caller owns the
// session. Foreign sessions look like unknown ones. A session a logged-in
// caller started as a guest moves to their account on first use.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*game.Session) error) error {
	caller, _ := s.callerID(w, r)
	guest := s.guestID(r)
	return s.store.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Session) error {
		if g.Owner != caller {
			if guest == "" || g.Owner != guest {
				return store.ErrNotFound
			}
			hlog.FromRequest(r).Info().Str("session", g.ID).Str("player", caller).Msg("claimed guest session")
			g.Owner = caller
		}
		return fn(g)
	})
}

// guestID is the anonymous cookie of a logged-in caller, or "".
func (s *Server) guestID(r *http.Request) string {
	if userFrom(r.Context()) == nil {
		return ""
	}
	c, err := r.Cookie(anonCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// finish steps the session, records a round that just ended and fills the
// snapshot and events of res.
func (s *Server) finish(r *http.Request, g *game.Session, res *commandRes) error {
	events, err := g.Step()
	res.Events = append(res.Events, newEventViews(events)...)
	res.Session = newSessionView(g)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Kind == game.EventStateChanged && e.State == game.StateEnded {
			res.Saved = s.record(r, g)
		}
	}
	return nil
}

// record stores the finished round. Failures are logged, not returned: the
// game itself is already over.
func (s *Server) record(r *http.Request, g *game.Session) bool {
	anonymous := true
	if u := userFrom(r.Context()); u != nil && u.ID == g.Owner {
		anonymous = false
	}
	ok, err := s.results.Insert(r.Context(), results.FromSession(g, anonymous))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", g.ID).Msg("record round")
		return false
	}
	if ok && !anonymous {
		if err := s.accounts.RecordRound(r.Context(), g.Owner, g.Score()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("player", g.Owner).Msg("bump player stats")
		}
	}
	hlog.FromRequest(r).Info().Str("session", g.ID).Int("score", g.Score()).Bool("saved", ok).Msg("round finished")
	return ok
}

// decodeOptional decodes a JSON body; an empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
