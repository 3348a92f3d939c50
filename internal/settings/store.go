// Package settings holds the live AI settings shared by the chat surfaces.
package settings

import (
	"sync"

	"github.com/nhle/memoask/internal/model"
)

// Reader exposes read access to the current settings.
type Reader interface {
	Get() model.AISettings
}

// Updater applies partial updates to the current settings.
type Updater interface {
	Update(patch model.SettingsPatch)
}

// Store owns the single live AISettings value. It is safe for concurrent
// use: requests read a snapshot from goroutines while the settings panel
// applies updates from the UI loop.
type Store struct {
	mu      sync.RWMutex
	current model.AISettings
}

// NewStore creates a store seeded with initial.
func NewStore(initial model.AISettings) *Store {
	return &Store{current: initial}
}

// Get returns a copy of the current settings.
func (s *Store) Get() model.AISettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Update merges patch into the current settings field by field. Fields
// the patch leaves nil keep their prior value. No validation happens
// here; callers that want it use Validate first.
func (s *Store) Update(patch model.SettingsPatch) {
	if patch.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = patch.Apply(s.current)
}
