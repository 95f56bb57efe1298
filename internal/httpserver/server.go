// internal/httpserver/server.go
//
// HTTP server wiring for the treasure hunt backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Hunt endpoints under /hunt, scoped to the calling player (see player.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the player cookie works).
//   - Every player gets an isolated progress keyspace "<playerID>/" in the backend.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/puzzle"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

// Options configures a Server.
type Options struct {
	ClientOrigin string        // allowed CORS origin
	JWTSecret    string        // HS256 key for player tokens
	TokenTTL     time.Duration // player token lifetime
	CookieName   string        // player cookie name
	Secure       bool          // Secure + SameSite=None cookies (production)
	ResetPinHash string        // bcrypt hash; empty means reset needs no PIN
	HuntOptions  []game.Option // passed to every game.Load
}

// Server bundles router, puzzle definition and per-player hunts.
type Server struct {
	r        *chi.Mux
	opts     Options
	sessions *sessions
}

// New constructs a Server, installs middleware, and registers routes.
func New(def *puzzle.Definition, backend store.Backend, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "treasure_player"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 180 * 24 * time.Hour
	}
	s := &Server{
		r:        chi.NewRouter(),
		opts:     opts,
		sessions: newSessions(def, backend, opts.HuntOptions),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"treasure-hunt-go","endpoints":["/health","GET /hunt","POST /hunt/codes","GET /hunt/scan","GET /hunt/treasure","POST /hunt/reset"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountHunt(s.r.With(s.withPlayer))

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Router exposes the internal router (served by the CLI, used by tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
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
