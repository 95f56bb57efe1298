package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/puzzle"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func testServer(t *testing.T, backend store.Backend, opts Options) *Server {
	t.Helper()
	def, err := puzzle.New(
		[]puzzle.Step{{Code: "abc", Riddle: "R1\nline"}, {Code: "xyz", Riddle: "R2"}},
		&puzzle.Final{Code: "FIN", Message: "Treasure!"},
		[]string{"Great"},
	)
	if err != nil {
		t.Fatalf("puzzle.New failed: %v", err)
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	return New(def, backend, opts)
}

// client replays the player token the server issued on the first request.
type client struct {
	t     *testing.T
	srv   *Server
	token string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(rec, req)
	if tok := rec.Header().Get("X-Player-Token"); tok != "" {
		c.token = tok
	}
	return rec
}

func (c *client) submit(code string) submitRes {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/hunt/codes", `{"code":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("POST /hunt/codes %q = %d: %s", code, rec.Code, rec.Body.String())
	}
	var res submitRes
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		c.t.Fatalf("decode: %v", err)
	}
	return res
}

func TestHealth(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	rec := c.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	if rec := c.do(http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{ClientOrigin: "https://hunt.example"})}
	rec := c.do(http.MethodOptions, "/hunt/codes", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://hunt.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestProgress_NewPlayerGetsCookie(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{CookieName: "hunt"})}
	rec := c.do(http.MethodGet, "/hunt", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /hunt = %d", rec.Code)
	}

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "hunt" {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("missing player cookie: %+v", rec.Result().Cookies())
	}

	var p progressRes
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FoundCodes != 0 || p.MaxCodes != 2 || p.FoundCodesWord != "kódů" || p.State != "in_progress" {
		t.Errorf("progress = %+v", p)
	}
	if p.Riddle == nil || *p.Riddle != "R1<br>line" {
		t.Errorf("riddle = %v", p.Riddle)
	}

	// The cookie alone identifies the player on the next request.
	req := httptest.NewRequest(http.MethodGet, "/hunt", nil)
	req.AddCookie(cookie)
	again := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(again, req)
	if again.Header().Get("X-Player-Token") != "" {
		t.Error("valid cookie should not trigger a new identity")
	}
}

func TestSubmit_FullHunt(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	c.do(http.MethodGet, "/hunt", "")

	if res := c.submit("FIN"); res.Kind != game.KindCheating {
		t.Errorf("early FIN = %+v", res)
	}
	if res := c.submit("nope"); res.Kind != game.KindWrongCode || res.Progress.FoundCodes != 0 {
		t.Errorf("wrong = %+v", res)
	}
	if res := c.submit("abc"); res.Kind != game.KindSuccess || res.Message != "Great" || res.Progress.FoundCodes != 1 {
		t.Errorf("abc = %+v", res)
	}
	if rec := c.do(http.MethodGet, "/hunt/treasure", ""); rec.Code != http.StatusForbidden {
		t.Errorf("treasure before completion = %d", rec.Code)
	}

	// QR scan URL goes through the same validation.
	rec := c.do(http.MethodGet, "/hunt/scan?code=xyz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"kind":"success"`) {
		t.Fatalf("scan = %d %s", rec.Code, rec.Body.String())
	}

	res := c.submit("FIN")
	if res.Kind != game.KindCompleted || res.Message != "Treasure!" || res.Redirect != "/hunt/treasure" {
		t.Errorf("FIN = %+v", res)
	}
	if !res.Progress.HasTreasure || res.Progress.Riddle != nil || res.Progress.FoundCodesWord != "kódy" {
		t.Errorf("progress = %+v", res.Progress)
	}

	rec = c.do(http.MethodGet, "/hunt/treasure", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Treasure!") {
		t.Errorf("treasure = %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubmit_BadJSON(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	if rec := c.do(http.MethodPost, "/hunt/codes", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d", rec.Code)
	}
}

func TestPlayersAreIsolated(t *testing.T) {
	srv := testServer(t, store.NewMemory(), Options{})
	alice := &client{t: t, srv: srv}
	bob := &client{t: t, srv: srv}

	alice.submit("abc")
	if res := bob.submit("nope"); res.Progress.FoundCodes != 0 {
		t.Errorf("bob sees alice's progress: %+v", res.Progress)
	}
	if alice.token == bob.token {
		t.Error("players share a token")
	}
}

func TestProgressSurvivesRestart(t *testing.T) {
	mem := store.NewMemory()
	first := &client{t: t, srv: testServer(t, mem, Options{})}
	first.submit("abc")

	// A new server over the same backend, same token.
	second := &client{t: t, srv: testServer(t, mem, Options{}), token: first.token}
	rec := second.do(http.MethodGet, "/hunt", "")
	var p progressRes
	_ = json.NewDecoder(rec.Body).Decode(&p)
	if p.FoundCodes != 1 {
		t.Errorf("FoundCodes after restart = %d, want 1", p.FoundCodes)
	}
}

func TestForgedTokenGetsNewIdentity(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	c.submit("abc")

	other := testServer(t, store.NewMemory(), Options{JWTSecret: "other"})
	forged, _, err := other.signPlayerToken("2b1f1f7e-8d3c-4c55-9b7e-1d2f3a4b5c6d")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c.token = forged
	rec := c.do(http.MethodGet, "/hunt", "")
	if rec.Header().Get("X-Player-Token") == "" {
		t.Error("token signed with another secret must be replaced")
	}
}

func TestReset(t *testing.T) {
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{})}
	c.submit("abc")

	rec := c.do(http.MethodPost, "/hunt/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset = %d %s", rec.Code, rec.Body.String())
	}
	var p progressRes
	_ = json.NewDecoder(rec.Body).Decode(&p)
	if p.FoundCodes != 0 || p.HasTreasure {
		t.Errorf("after reset = %+v", p)
	}
}

func TestReset_RequiresPin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	c := &client{t: t, srv: testServer(t, store.NewMemory(), Options{ResetPinHash: string(hash)})}
	c.submit("abc")

	if rec := c.do(http.MethodPost, "/hunt/reset", `{"pin":"0000"}`); rec.Code != http.StatusForbidden {
		t.Errorf("wrong pin = %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/hunt/reset", ""); rec.Code != http.StatusForbidden {
		t.Errorf("missing pin = %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/hunt/reset", `{"pin":"1234"}`); rec.Code != http.StatusOK {
		t.Errorf("right pin = %d", rec.Code)
	}
}

type downBackend struct{ *store.Memory }

func (downBackend) Write(context.Context, string, string) error { return errors.New("disk full") }

func TestSubmit_StorageUnavailable(t *testing.T) {
	c := &client{t: t, srv: testServer(t, downBackend{store.NewMemory()}, Options{})}
	rec := c.do(http.MethodPost, "/hunt/codes", `{"code":"abc"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	// Wrong codes never write, so they still work.
	if res := c.submit("nope"); res.Kind != game.KindWrongCode {
		t.Errorf("wrong = %+v", res)
	}
}

func TestServersShareBackend(t *testing.T) {
	mem := store.NewMemory()
	a := &client{t: t, srv: testServer(t, mem, Options{})}
	a.submit("abc")
	b := &client{t: t, srv: testServer(t, mem, Options{}), token: a.token}

	// Each server must see writes made through the other one.
	if res := b.submit("xyz"); res.Progress.FoundCodes != 2 {
		t.Fatalf("b after xyz = %+v", res.Progress)
	}
	if res := a.submit("FIN"); res.Kind != game.KindCompleted {
		t.Errorf("a FIN = %+v, want completed", res)
	}
	if rec := b.do(http.MethodGet, "/hunt/treasure", ""); rec.Code != http.StatusOK {
		t.Errorf("b treasure = %d", rec.Code)
	}
}

func TestSubmit_ConcurrentSamePlayer(t *testing.T) {
	mem := store.NewMemory()
	c := &client{t: t, srv: testServer(t, mem, Options{})}
	c.do(http.MethodGet, "/hunt", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, code := range []string{"abc", "xyz"} {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodGet, "/hunt/scan?code="+code, nil)
				req.Header.Set("Authorization", "Bearer "+c.token)
				rec := httptest.NewRecorder()
				c.srv.Router().ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("scan %s = %d", code, rec.Code)
				}
			}(code)
		}
	}
	wg.Wait()

	if res := c.submit("FIN"); res.Kind != game.KindCompleted || res.Progress.FoundCodes != 2 {
		t.Errorf("FIN = %+v, want completed with both codes", res)
	}
}

func TestScan_WithoutCookieStartsFresh(t *testing.T) {
	srv := testServer(t, store.NewMemory(), Options{})
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hunt/scan?code=abc", nil))
		var res submitRes
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Progress.FoundCodes != 1 || rec.Header().Get("X-Player-Token") == "" {
			t.Fatalf("scan %d = %+v, want a new player with one code", i, res.Progress)
		}
	}
}
