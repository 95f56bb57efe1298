// internal/httpserver/routes_hunt.go
//
// HTTP routes for playing the hunt. Exposed under /hunt:
//   - GET  /hunt          → current progress and unlocked riddle
//   - POST /hunt/codes    → submit a code {"code": "..."}
//   - GET  /hunt/scan     → submit ?code=... (the URL printed in QR codes)
//   - GET  /hunt/treasure → final message, once the treasure is found
//   - POST /hunt/reset    → clear progress {"pin": "..."} (PIN only if configured)
//
// Wrong, repeated and premature codes are normal results (200), not errors.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
)

// mountHunt registers all /hunt routes.
func (s *Server) mountHunt(r chi.Router) {
	r.Route("/hunt", func(r chi.Router) {
		r.Get("/", s.handleProgress)
		r.Post("/codes", s.handleSubmit)
		r.Get("/scan", s.handleScan)
		r.Get("/treasure", s.handleTreasure)
		r.Post("/reset", s.handleReset)
	})
}

// progressRes describes what the UI should render next.
type progressRes struct {
	FoundCodes     int     `json:"foundCodes"`
	FoundCodesWord string  `json:"foundCodesWord"`
	MaxCodes       int     `json:"maxCodes"`
	Riddle         *string `json:"riddle"` // null once every riddle is used up
	HasTreasure    bool    `json:"hasTreasure"`
	State          string  `json:"state"` // in_progress | completed
}

func progressOf(snap game.Snapshot) progressRes {
	res := progressRes{
		FoundCodes:     snap.FoundCodes,
		FoundCodesWord: snap.FoundCodesWord,
		MaxCodes:       snap.MaxCodes,
		HasTreasure:    snap.HasTreasure,
		State:          snap.State,
	}
	if snap.HasRiddle {
		res.Riddle = &snap.Riddle
	}
	return res
}

// withHunt runs fn on the calling player's hunt. Storage failures, whether
// loading or inside fn, are logged under action and answered with a 503.
func (s *Server) withHunt(w http.ResponseWriter, r *http.Request, action string, fn func(h *game.Hunt) error) bool {
	player := playerID(r.Context())
	if err := s.sessions.with(r.Context(), player, fn); err != nil {
		log.Error().Err(err).Str("player", player).Msg(action)
		http.Error(w, `{"error":"storage_unavailable"}`, http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleProgress returns the player's progress.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	ok := s.withHunt(w, r, "load hunt", func(h *game.Hunt) error {
		snap = h.Snapshot()
		return nil
	})
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(progressOf(snap))
}

// submitReq is the request payload for POST /hunt/codes.
type submitReq struct {
	Code string `json:"code"`
}

// submitRes is the response payload for code submissions.
type submitRes struct {
	Kind     game.Kind   `json:"kind"` // wrong_code | already_found | cheating | success | completed
	Message  string      `json:"message"`
	Redirect string      `json:"redirect,omitempty"` // set on completion
	Progress progressRes `json:"progress"`
}

// handleSubmit validates a code from the JSON body.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	s.submit(w, r, req.Code)
}

// handleScan validates a code from the query string.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, r.URL.Query().Get("code"))
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, code string) {
	var (
		res  game.Result
		snap game.Snapshot
	)
	ok := s.withHunt(w, r, "validate code", func(h *game.Hunt) error {
		var err error
		if res, err = h.ValidateCode(r.Context(), code); err != nil {
			return err
		}
		snap = h.Snapshot()
		return nil
	})
	if !ok {
		return
	}

	out := submitRes{Kind: res.Kind, Message: res.Message, Progress: progressOf(snap)}
	if res.Kind == game.KindCompleted {
		out.Redirect = "/hunt/treasure"
		log.Info().Str("player", playerID(r.Context())).Msg("treasure found")
	}
	_ = json.NewEncoder(w).Encode(out)
}

// treasureRes is returned by GET /hunt/treasure.
type treasureRes struct {
	Message string `json:"message"`
}

// handleTreasure reveals the final message only to players who completed the hunt.
func (s *Server) handleTreasure(w http.ResponseWriter, r *http.Request) {
	var (
		found   bool
		message string
	)
	ok := s.withHunt(w, r, "load hunt", func(h *game.Hunt) error {
		found, message = h.HasTreasure(), h.FinalMessage()
		return nil
	})
	if !ok {
		return
	}
	if !found {
		http.Error(w, `{"error":"treasure_not_found"}`, http.StatusForbidden)
		return
	}
	_ = json.NewEncoder(w).Encode(treasureRes{Message: message})
}

// resetReq is the request payload for POST /hunt/reset.
type resetReq struct {
	Pin string `json:"pin"`
}

// handleReset clears the player's progress, checking the PIN when one is configured.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.opts.ResetPinHash != "" {
		var req resetReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		err := bcrypt.CompareHashAndPassword([]byte(s.opts.ResetPinHash), []byte(req.Pin))
		if err != nil {
			if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				log.Warn().Err(err).Msg("reset pin hash")
			}
			http.Error(w, `{"error":"invalid_pin"}`, http.StatusForbidden)
			return
		}
	}

	var snap game.Snapshot
	ok := s.withHunt(w, r, "reset hunt", func(h *game.Hunt) error {
		if err := h.Reset(r.Context()); err != nil {
			return err
		}
		snap = h.Snapshot()
		return nil
	})
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(progressOf(snap))
}
