// internal/httpserver/sessions.go
//
// Per-player hunts, loaded from the backend on every request.
// The backend is the only copy of a player's progress, so memory does not grow
// with the number of players (QR scanners that drop cookies mint a new player
// per scan). Requests for the same player are serialized by a fixed set of
// striped locks so a read-modify-write never loses another request's update.

package httpserver

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/puzzle"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

const lockStripes = 64

type sessions struct {
	def     *puzzle.Definition
	backend store.Backend
	opts    []game.Option

	locks [lockStripes]sync.Mutex // player ID → stripe by FNV-1a
}

func newSessions(def *puzzle.Definition, backend store.Backend, opts []game.Option) *sessions {
	return &sessions{def: def, backend: backend, opts: opts}
}

func (s *sessions) lockFor(player string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(player))
	return &s.locks[h.Sum32()%lockStripes]
}

// with restores the player's hunt and runs fn on it while holding the
// player's stripe lock. Load errors are returned without calling fn.
func (s *sessions) with(ctx context.Context, player string, fn func(*game.Hunt) error) error {
	mu := s.lockFor(player)
	mu.Lock()
	defer mu.Unlock()

	h, err := game.Load(ctx, s.def, s.backend, player+"/", s.opts...)
	if err != nil {
		return err
	}
	return fn(h)
}
