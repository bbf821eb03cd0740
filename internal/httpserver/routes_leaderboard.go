package httpserver

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/sets/internal/daily"
	"github.com/robalobadob/sets/internal/game"
	"github.com/robalobadob/sets/internal/results"
)

// handleLeaderboard serves GET /leaderboard?mode=&date=&limit=.
// date=today selects the current daily challenge.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := game.ModeNormal
	if v := q.Get("mode"); v != "" {
		m, err := game.ParseMode(v)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		mode = m
	}
	date := q.Get("date")
	if date == "today" {
		date = daily.DateKey(s.now())
	} else if date != "" {
		if _, err := daily.ParseKey(date); err != nil {
			writeError(w, http.StatusBadRequest, "bad_date")
			return
		}
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	rows, err := s.results.Leaderboard(r.Context(), results.Query{Mode: mode, Date: date, Limit: limit})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":    mode,
		"date":    date,
		"entries": rows,
	})
}
