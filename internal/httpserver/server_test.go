package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/robalobadob/set3/internal/config"
	"github.com/robalobadob/set3/internal/game"
	"github.com/robalobadob/set3/internal/ledger"
	"github.com/robalobadob/set3/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testServer struct {
	*Server
	st store.Store
}

func newTestServer(t *testing.T, cfg config.Config, withDB bool) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	if !withDB {
		return &testServer{Server: New(cfg, st, nil), st: st}
	}
	db, err := ledger.Open(filepath.Join(t.TempDir(), "set3.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ledger.Migrate(db); err != nil {
		t.Fatalf("ledger.Migrate: %v", err)
	}
	return &testServer{Server: New(cfg, st, db), st: st}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

// viewJSON is the subset of game.View the tests read back.
type viewJSON struct {
	ID        string `json:"id"`
	Positions []struct {
		Index int             `json:"index"`
		Card  json.RawMessage `json:"card"`
		State string          `json:"state"`
	} `json:"positions"`
	Score         int    `json:"score"`
	Status        string `json:"status"`
	HintsLabel    string `json:"hintsLabel"`
	HintsVisible  bool   `json:"hintsVisible"`
	DeckRemaining int    `json:"deckRemaining"`
	SetsFound     int    `json:"setsFound"`
	ExtraDeals    int    `json:"extraDeals"`
	Over          bool   `json:"over"`
}

func (v viewJSON) cards() int {
	n := 0
	for _, p := range v.Positions {
		if string(p.Card) != "null" {
			n++
		}
	}
	return n
}

type newGameJSON struct {
	GameID string   `json:"gameId"`
	Token  string   `json:"token"`
	Date   string   `json:"date"`
	View   viewJSON `json:"view"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (ts *testServer) newGame(t *testing.T, body any) newGameJSON {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/game/new", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /game/new = %d %s", rec.Code, rec.Body.String())
	}
	return decode[newGameJSON](t, rec)
}

func TestHealthAndCORS(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Allow-Origin = %q", got)
	}
	if rec := ts.do(t, http.MethodOptions, "/game/new", "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", rec.Code)
	}
}

func TestNewGame(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	g := ts.newGame(t, nil)
	if g.GameID == "" || g.Token == "" || g.View.ID != g.GameID {
		t.Fatalf("unexpected response: %+v", g)
	}
	if len(g.View.Positions) != game.MaxBoardPositions || g.View.cards() != game.InitialDeal {
		t.Fatalf("board has %d positions and %d cards", len(g.View.Positions), g.View.cards())
	}
	if g.View.DeckRemaining != game.MaxDeckSize-game.InitialDeal || g.View.HintsLabel != "Hints" {
		t.Fatalf("unexpected view: %+v", g.View)
	}
}

func TestNewGameWithSeedIsReproducible(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	a := ts.newGame(t, map[string]uint64{"seed": 7})
	b := ts.newGame(t, map[string]uint64{"seed": 7})
	if a.GameID == b.GameID {
		t.Fatalf("two games share an id")
	}
	pa, _ := json.Marshal(a.View.Positions)
	pb, _ := json.Marshal(b.View.Positions)
	if !bytes.Equal(pa, pb) {
		t.Fatalf("same seed dealt different boards")
	}
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DeckSize = 0
	ts := newTestServer(t, cfg, false)
	rec := ts.do(t, http.MethodPost, "/game/new", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /game/new = %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["error"] != "bad_config" {
		t.Fatalf("error = %v", got)
	}
	if rec := ts.do(t, http.MethodPost, "/game/new", "", "{"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", rec.Code)
	}
}

func TestGameRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	a := ts.newGame(t, nil)
	b := ts.newGame(t, nil)
	ghost, _, err := ts.signToken("ghost")
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/game/" + a.GameID, "", http.StatusUnauthorized},
		{"garbage", "/game/" + a.GameID, "not-a-jwt", http.StatusUnauthorized},
		{"other game", "/game/" + a.GameID, b.Token, http.StatusUnauthorized},
		{"unknown game", "/game/ghost", ghost, http.StatusNotFound},
		{"own token", "/game/" + a.GameID, a.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.do(t, http.MethodGet, tt.path, tt.token, nil); rec.Code != tt.want {
				t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestTokenFromOtherSecretIsRejected(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	g := ts.newGame(t, nil)
	cfg := config.Default()
	cfg.JWTSecret = "another"
	other := newTestServer(t, cfg, false)
	forged, _, _ := other.signToken(g.GameID)
	if rec := ts.do(t, http.MethodGet, "/game/"+g.GameID, forged, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token = %d", rec.Code)
	}
}

// gameWithSet starts seeded games until the opening board holds a Set.
func gameWithSet(t *testing.T, ts *testServer) (newGameJSON, game.Hint) {
	t.Helper()
	for seed := uint64(1); seed < 100; seed++ {
		g := ts.newGame(t, map[string]uint64{"seed": seed})
		sess, err := ts.st.Get(context.Background(), g.GameID)
		if err != nil {
			t.Fatalf("store.Get: %v", err)
		}
		if sets := game.FindSets(sess.Engine.Board()); len(sets) > 0 {
			return g, sets[0]
		}
	}
	t.Fatalf("no seed produced a Set")
	return newGameJSON{}, game.Hint{}
}

func TestSelectValidSet(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	g, h := gameWithSet(t, ts)
	path := "/game/" + g.GameID + "/select"

	var v viewJSON
	for _, p := range h {
		rec := ts.do(t, http.MethodPost, path, g.Token, map[string]int{"position": p})
		if rec.Code != http.StatusOK {
			t.Fatalf("select %d = %d %s", p, rec.Code, rec.Body.String())
		}
		v = decode[viewJSON](t, rec)
	}
	if v.Score != game.ScoreSuccess || v.SetsFound != 1 {
		t.Fatalf("score=%d setsFound=%d", v.Score, v.SetsFound)
	}
	if v.Status != "100 points recorded for this Set" {
		t.Fatalf("status = %q", v.Status)
	}
	for _, p := range h {
		if v.Positions[p].State != "successful" {
			t.Fatalf("position %d state = %s", p, v.Positions[p].State)
		}
	}
}

func TestSelectRejectsBadBody(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	g := ts.newGame(t, nil)
	path := "/game/" + g.GameID + "/select"
	for _, body := range []any{nil, map[string]string{"position": "x"}, map[string]int{"other": 1}} {
		if rec := ts.do(t, http.MethodPost, path, g.Token, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("select with %v = %d", body, rec.Code)
		}
	}
}

func TestDealHintsReset(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	g, _ := gameWithSet(t, ts)
	base := "/game/" + g.GameID

	v := decode[viewJSON](t, ts.do(t, http.MethodPost, base+"/hints", g.Token, nil))
	if !v.HintsVisible || v.HintsLabel == "Hints" {
		t.Fatalf("hints not shown: %+v", v)
	}

	v = decode[viewJSON](t, ts.do(t, http.MethodPost, base+"/deal", g.Token, nil))
	if v.DeckRemaining != game.MaxDeckSize-game.InitialDeal-game.DealSize || v.cards() != 15 {
		t.Fatalf("after deal: deck=%d cards=%d", v.DeckRemaining, v.cards())
	}
	if v.ExtraDeals != 1 || v.Score != 0 || v.HintsVisible {
		t.Fatalf("after deal: %+v", v)
	}

	rec := ts.do(t, http.MethodPost, base+"/reset", g.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset = %d", rec.Code)
	}
	v = decode[viewJSON](t, rec)
	if v.ID != g.GameID || v.Score != 0 || v.ExtraDeals != 0 || v.cards() != game.InitialDeal {
		t.Fatalf("after reset: %+v", v)
	}
}

func TestGameOverIsRecordedOnce(t *testing.T) {
	cfg := config.Default()
	cfg.DeckSize = 2
	ts := newTestServer(t, cfg, true)

	g := ts.newGame(t, nil)
	if !g.View.Over {
		t.Fatalf("two-card game is not over")
	}
	ts.do(t, http.MethodPost, "/game/"+g.GameID+"/hints", g.Token, nil)
	ts.do(t, http.MethodPost, "/game/"+g.GameID+"/deal", g.Token, nil)

	rec := ts.do(t, http.MethodGet, "/scores/top?limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /scores/top = %d", rec.Code)
	}
	top := decode[struct {
		Top []ledger.Result `json:"top"`
	}](t, rec)
	if len(top.Top) != 1 || top.Top[0].GameID != g.GameID || top.Top[0].Mode != store.ModeClassic {
		t.Fatalf("top = %+v", top.Top)
	}

	// A reset starts a new round that is recorded separately.
	ts.do(t, http.MethodPost, "/game/"+g.GameID+"/reset", g.Token, nil)
	top = decode[struct {
		Top []ledger.Result `json:"top"`
	}](t, ts.do(t, http.MethodGet, "/scores/top", "", nil))
	if len(top.Top) != 2 {
		t.Fatalf("after reset top has %d rows, want 2", len(top.Top))
	}
}

func TestLedgerRoutesWithoutDB(t *testing.T) {
	ts := newTestServer(t, config.Default(), false)
	for _, path := range []string{"/scores/top", "/daily/leaderboard"} {
		if rec := ts.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
	}
}

// countingStore counts saved sessions.
type countingStore struct {
	store.Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, s *store.Session) error {
	c.saves++
	return c.Store.Save(ctx, s)
}

func TestNewGameWithoutSecretSavesNothing(t *testing.T) {
	cfg := config.Default()
	cfg.JWTSecret = ""
	st := &countingStore{Store: store.NewMemoryStore()}
	ts := &testServer{Server: New(cfg, st, nil), st: st}

	for _, path := range []string{"/game/new", "/daily/new"} {
		rec := ts.do(t, http.MethodPost, path, "", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("POST %s = %d, want 500", path, rec.Code)
		}
	}
	if st.saves != 0 {
		t.Fatalf("%d sessions saved without a token", st.saves)
	}
}
