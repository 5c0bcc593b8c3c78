package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps rounds in memory. Used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds map[uuid.UUID]*Round
	order  []uuid.UUID
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rounds: make(map[uuid.UUID]*Round)}
}

func (m *MemoryStore) CreateRound(_ context.Context, r *Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *r
	m.rounds[r.ID] = &stored
	m.order = append(m.order, r.ID)
	return nil
}

func (m *MemoryStore) GetRound(_ context.Context, id uuid.UUID) (*Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	out := *r
	return &out, nil
}

func (m *MemoryStore) FindRound(_ context.Context, playerID, trackID string) (*Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.order) - 1; i >= 0; i-- {
		if r := m.rounds[m.order[i]]; r.PlayerID == playerID && r.TrackID == trackID {
			out := *r
			return &out, nil
		}
	}
	return nil, ErrRoundNotFound
}

func (m *MemoryStore) SaveGuess(_ context.Context, id uuid.UUID, guess, points int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rounds[id]
	if !ok {
		return ErrRoundNotFound
	}
	if r.Guessed() {
		return ErrAlreadyGuessed
	}
	r.Guess = &guess
	r.Points = points
	r.GuessedAt = &at
	return nil
}

// PlayerRounds returns the player's rounds, oldest first.
func (m *MemoryStore) PlayerRounds(_ context.Context, playerID string) ([]Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Round
	for _, id := range m.order {
		if r := m.rounds[id]; r.PlayerID == playerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
