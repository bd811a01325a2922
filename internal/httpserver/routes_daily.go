// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily deal.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start a game seeded from today's date
//   - GET  /daily/leaderboard → best daily results for today (or ?date=YYYY-MM-DD)
//
// Everyone playing on the same UTC day gets the same shuffle and deals.
// Daily games are played through the regular /game/{id}/* routes and are
// written to the ledger with mode "daily" when they end.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/robalobadob/set3/internal/daily"
	"github.com/robalobadob/set3/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store // nil without a database
	salt  string
	now   func() time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, salt: s.cfg.DailySalt, now: time.Now}
	if s.db != nil {
		dd.store = daily.NewStore(s.db)
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// handleNew starts a daily game for the current UTC date.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	now := d.now()
	rng := rand.New(rand.NewSource(daily.Seed(now, d.salt)))
	d.srv.startSession(w, r, rng, store.ModeDaily, daily.DateKey(now))
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if d.store == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, queryLimit(r))
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
