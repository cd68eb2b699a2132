// Package cart holds the single pending ticket selection between the package
// selector and checkout.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"rifas-storefront/internal/models"
)

// StorageKey is the durable key the selection is persisted under
const StorageKey = "raffle-storage"

// Backend is the persistence boundary of the cart store
type Backend interface {
	Load(key string) (string, bool)
	Save(key, value string) error
	Delete(key string) error
}

// Store keeps at most one selection. Every set overwrites the previous value
// and is written through to the backend.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	current  *models.CartSelection
	hydrated bool
}

// NewStore creates a cart store over the given backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// SetSelection replaces the current selection. The in-memory value is always
// updated; the error only reports that persisting it failed.
func (s *Store) SetSelection(sel models.CartSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &sel
	s.hydrated = true

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to encode cart selection: %w", err)
	}
	if err := s.backend.Save(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist cart selection: %w", err)
	}
	return nil
}

// Selection returns the current selection, rehydrating it from the backend
// the first time. Missing or corrupt data reads as no selection.
func (s *Store) Selection() (models.CartSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		s.hydrated = true
		s.current = s.load()
	}
	if s.current == nil {
		return models.CartSelection{}, false
	}
	return *s.current, true
}

// Clear drops the selection from memory and storage
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.hydrated = true
	if err := s.backend.Delete(StorageKey); err != nil {
		return fmt.Errorf("failed to clear cart selection: %w", err)
	}
	return nil
}

func (s *Store) load() *models.CartSelection {
	raw, ok := s.backend.Load(StorageKey)
	if !ok || raw == "" {
		return nil
	}

	var sel models.CartSelection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return nil
	}
	if sel.IsEmpty() {
		return nil
	}
	return &sel
}
