// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Sessions are short-lived and hold live solver state, so they stay in
// process memory; sqlite only keeps the history/owner rows.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - The map is guarded by an RWMutex; each session has its own mutex, held
//     by Update and Sweep while they touch the game.
//   - State is lost when the process restarts.
//   - Get/Update return ErrNotFound for unknown or evicted IDs.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/digitmind/internal/game"
)

var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or updates a game state.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID. The game must not be read or changed
	// while other requests may hold it; use Update for that.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn with the session's lock held. fn's error is returned as is.
	Update(ctx context.Context, id string, fn func(*game.Game) error) error

	// Delete drops a session; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep deletes every session for which expired reports true and
	// returns how many were removed.
	Sweep(ctx context.Context, expired func(*game.Game) bool) int

	// Len reports how many sessions are held.
	Len() int
}

// entry pairs a session with the lock that serialises access to it.
type entry struct {
	mu   sync.Mutex
	g    *game.Game
	gone bool // set by Sweep; a waiting Update then reports ErrNotFound
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards games map
	games map[string]*entry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*entry)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	e, ok := m.games[g.ID]
	if !ok {
		m.games[g.ID] = &entry{g: g}
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	e.mu.Lock()
	e.g = g
	e.mu.Unlock()
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) error {
	m.mu.RLock()
	e, ok := m.games[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrNotFound
	}
	return fn(e.g)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, expired func(*game.Game) bool) int {
	m.mu.RLock()
	entries := make(map[string]*entry, len(m.games))
	for id, e := range m.games {
		entries[id] = e
	}
	m.mu.RUnlock()

	n := 0
	for id, e := range entries {
		e.mu.Lock()
		drop := !e.gone && expired(e.g)
		if drop {
			e.gone = true
		}
		e.mu.Unlock()
		if drop {
			_ = m.Delete(ctx, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
