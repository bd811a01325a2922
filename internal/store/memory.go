// internal/store/memory.go
//
// In-memory session store for live Set games.
// A Session wraps one *game.Engine together with the bookkeeping the HTTP
// layer needs (mode, daily key, whether the current round reached the ledger).
//
// Characteristics:
//   - Sessions are keyed by Engine.ID.
//   - The map is guarded by an RWMutex; each Session carries its own mutex
//     because an Engine is not safe for concurrent use.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/set3/internal/game"
)

// Game modes recorded with a session.
const (
	ModeClassic = "classic"
	ModeDaily   = "daily"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("store: session not found")

// Session is one client's game. Lock it around every Engine call.
type Session struct {
	sync.Mutex

	Engine *game.Engine
	Mode   string
	Day    string // YYYY-MM-DD for daily games, empty otherwise

	// Round counts restarts of the same session; Recorded tells whether the
	// current round's result has been written to the ledger.
	Round    int
	Recorded bool
}

// ID is the id of the wrapped engine.
func (s *Session) ID() string { return s.Engine.ID }

// Reset starts a new round on the same engine.
func (s *Session) Reset() error {
	if err := s.Engine.NewGame(); err != nil {
		return err
	}
	s.Round++
	s.Recorded = false
	return nil
}

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	if s == nil || s.Engine == nil {
		return errors.New("store: session without engine")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}
