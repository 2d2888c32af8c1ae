// Package formulastore persists user-authored formulas as a single JSON list
// kept under one blob key.
package formulastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"flaromlab/internal/blob"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

// DefaultKey is the blob key used when none is configured.
const DefaultKey = "myFormulas"

// Store reads and appends the saved formula list.
type Store struct {
	mu   sync.Mutex
	blob blob.Store
	key  string
}

// New wraps a blob store. An empty key selects DefaultKey.
func New(store blob.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{blob: store, key: key}
}

// Key returns the blob key the list is stored under.
func (s *Store) Key() string { return s.key }

// LoadSaved returns the persisted formulas. A missing blob yields an empty list.
func (s *Store) LoadSaved(ctx context.Context) ([]models.Formula, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// AppendSaved appends f to the persisted list and returns the new list.
func (s *Store) AppendSaved(ctx context.Context, f models.Formula) ([]models.Formula, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	formulas, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	formulas = append(formulas, f)

	payload, err := json.Marshal(formulas)
	if err != nil {
		return nil, fmt.Errorf("encode saved formulas: %w", err)
	}
	if err := s.blob.Put(ctx, s.key, payload); err != nil {
		return nil, fmt.Errorf("write saved formulas: %w", err)
	}

	applog.Info(ctx, "formula saved", "id", f.ID, "name", f.Name, "total", len(formulas), "driver", s.blob.Driver())
	return formulas, nil
}

func (s *Store) load(ctx context.Context) ([]models.Formula, error) {
	payload, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return []models.Formula{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved formulas: %w", err)
	}
	if len(payload) == 0 {
		return []models.Formula{}, nil
	}

	var formulas []models.Formula
	if err := json.Unmarshal(payload, &formulas); err != nil {
		return nil, fmt.Errorf("decode saved formulas: %w", err)
	}
	if formulas == nil {
		formulas = []models.Formula{}
	}
	return formulas, nil
}
