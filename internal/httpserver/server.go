// internal/httpserver/server.go
//
// HTTP server wiring for the Set backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /game/new, GET /scores/top.
//   - Game endpoints (token required): /game/{id}, /game/{id}/{select,deal,hints,reset}.
//   - Daily endpoints: mounted under /daily.
//   - Writing finished games to the results ledger exactly once per round.
//
// Notes:
//   - CORS is single-origin and credentials-enabled.
//   - Without a database the game still plays; ledger routes answer 503.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/robalobadob/set3/internal/config"
	"github.com/robalobadob/set3/internal/game"
	"github.com/robalobadob/set3/internal/ledger"
	"github.com/robalobadob/set3/internal/store"
)

// Server bundles router, session store, and the optional ledger database.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	store  store.Store
	db     *sql.DB
	ledger *ledger.Ledger
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, store: st, db: db}
	if db != nil {
		s.ledger = ledger.New(db)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"set-go","endpoints":["/health","POST /game/new","/game/{id}/*","/daily/*","/scores/top"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireGameToken())
		r.Get("/", s.act("view", nil))
		r.Post("/select", s.act("select", selectPosition))
		r.Post("/deal", s.act("deal", func(sess *store.Session, _ *http.Request) error {
			sess.Engine.DealExtraCards()
			return nil
		}))
		r.Post("/hints", s.act("hints", func(sess *store.Session, _ *http.Request) error {
			sess.Engine.ToggleHints()
			return nil
		}))
		r.Post("/reset", s.act("reset", resetSession))
	})

	s.mountDaily(s.r)
	s.r.Get("/scores/top", s.handleTopScores)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the optional body of POST /game/new.
type newGameReq struct {
	Seed *uint64 `json:"seed"` // reproducible shuffle and deals
}

// newGameRes is returned by POST /game/new and POST /daily/new.
type newGameRes struct {
	GameID string    `json:"gameId"`
	Token  string    `json:"token"`
	Date   string    `json:"date,omitempty"`
	View   game.View `json:"view"`
}

// handleNewGame creates a classic game with the configured sizes.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	s.startSession(w, r, rng, store.ModeClassic, "")
}

// startSession builds an engine, stores it and answers with a token bound to it.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, rng *rand.Rand, mode, day string) {
	e, err := game.New(s.cfg.Game(), rng)
	var cfgErr *game.ConfigurationError
	if errors.As(err, &cfgErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_config", "detail": cfgErr.Error()})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "new_game_failed")
		return
	}

	// Nothing is stored unless a token could be issued.
	token, _, err := s.signToken(e.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "token_failed")
		return
	}
	sess := &store.Session{Engine: e, Mode: mode, Day: day}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	sess.Lock()
	s.recordIfOver(r.Context(), sess)
	view := e.View()
	sess.Unlock()

	log.Debug().Str("gameId", sess.ID()).Str("mode", mode).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID(), Token: token, Date: day, View: view})
}

// errBadRequest marks action errors caused by the request body.
var errBadRequest = errors.New("bad request")

// act wraps one engine command: it serializes access to the session, records
// the result when the game is over and answers with the resulting view.
// A nil fn only reads the view.
func (s *Server) act(name string, fn func(*store.Session, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess == nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		sess.Lock()
		var err error
		if fn != nil {
			err = fn(sess, r)
		}
		if err == nil {
			s.recordIfOver(r.Context(), sess)
		}
		view := sess.Engine.View()
		sess.Unlock()

		switch {
		case errors.Is(err, errBadRequest):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, errDailyReset):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			log.Error().Err(err).Str("gameId", sess.ID()).Str("action", name).Msg("game action")
			writeError(w, http.StatusInternalServerError, "action_failed")
			return
		}

		log.Debug().Str("gameId", sess.ID()).Str("action", name).
			Int("score", view.Score).Bool("over", view.Over).Msg("game action")
		writeJSON(w, http.StatusOK, view)
	}
}

// selectReq is the body of POST /game/{id}/select.
type selectReq struct {
	Position *int `json:"position"` // 0-based
}

func selectPosition(sess *store.Session, r *http.Request) error {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		return errBadRequest
	}
	sess.Engine.SelectPosition(*req.Position)
	return nil
}

// errDailyReset refuses to redeal a daily game: its deal is fixed for the day.
var errDailyReset = errors.New("daily_reset_not_allowed")

func resetSession(sess *store.Session, _ *http.Request) error {
	if sess.Mode == store.ModeDaily {
		return errDailyReset
	}
	return sess.Reset()
}

// recordIfOver writes the current round to the ledger the first time it is
// seen over. Failures are logged and retried on the next action.
// The caller holds the session lock.
func (s *Server) recordIfOver(ctx context.Context, sess *store.Session) {
	if s.ledger == nil || sess.Recorded || !sess.Engine.Over() {
		return
	}
	e := sess.Engine
	_, err := s.ledger.Record(ctx, ledger.Result{
		GameID:     sess.ID(),
		Round:      sess.Round,
		Mode:       sess.Mode,
		Day:        sess.Day,
		Score:      e.Score(),
		SetsFound:  e.SetsFound(),
		ExtraDeals: e.ExtraDeals(),
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID()).Msg("record result")
		return
	}
	sess.Recorded = true
	log.Info().Str("gameId", sess.ID()).Str("mode", sess.Mode).Int("score", e.Score()).Msg("game over")
}

// ------------------------------ SCORES -------------------------------------

// handleTopScores lists the best finished classic games.
func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable")
		return
	}
	rows, err := s.ledger.Top(r.Context(), store.ModeClassic, queryLimit(r))
	if err != nil {
		log.Error().Err(err).Msg("top scores")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top": rows})
}

// ------------------------------- small util --------------------------------

// queryLimit parses ?limit=, clamped to 1..100; zero means the default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	if n > 100 {
		n = 100
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
