package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safar/internal/model"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	intent := &model.TripIntent{TripID: "TRIP_A", Destination: "Varanasi", NumDays: 3, NumPeople: 1}
	require.NoError(t, store.SaveIntent(ctx, intent))

	// Mutating the caller's value does not change the stored copy
	intent.Destination = "Goa"

	got, err := store.GetIntent(ctx, "TRIP_A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Varanasi", got.Destination)

	missing, err := store.GetIntent(ctx, "TRIP_B")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ConcurrentWriters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.SaveIntent(ctx, &model.TripIntent{TripID: fmt.Sprintf("TRIP_%d", i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
