package repository

import (
	"context"

	"github.com/patrickmn/go-cache"

	"safar/internal/model"
)

// MemoryStore keeps trip intents for the lifetime of the process.
// It is used when no database is configured.
type MemoryStore struct {
	intents *cache.Cache
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		intents: cache.New(cache.NoExpiration, 0),
	}
}

// SaveIntent stores a copy of the intent
func (m *MemoryStore) SaveIntent(_ context.Context, intent *model.TripIntent) error {
	stored := *intent
	m.intents.Set(intent.TripID, &stored, cache.NoExpiration)
	return nil
}

// GetIntent returns a copy of a stored intent, or nil
func (m *MemoryStore) GetIntent(_ context.Context, tripID string) (*model.TripIntent, error) {
	v, ok := m.intents.Get(tripID)
	if !ok {
		return nil, nil
	}
	found := *v.(*model.TripIntent)
	return &found, nil
}

// Len returns the number of stored intents
func (m *MemoryStore) Len() int {
	return m.intents.ItemCount()
}
