package session

import (
	"context"
	"sync"

	"github.com/Sam1808/Fish-shop-bot/models"
)

// MemoryStore is a process-local store for tests and local runs. State is
// lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]models.State
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]models.State)}
}

// Get returns the stored state, or ErrNotFound for a fresh chat.
func (s *MemoryStore) Get(_ context.Context, chatID int64) (models.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[chatID]
	if !ok {
		return "", ErrNotFound
	}
	return state, nil
}

// Set stores the chat's state.
func (s *MemoryStore) Set(_ context.Context, chatID int64, state models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = state
	return nil
}

// Ping always succeeds; memory is as reachable as it gets.
func (s *MemoryStore) Ping(context.Context) error { return nil }
