package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoRecords(t *testing.T) {
	demo := DemoRecords()
	require.Len(t, demo, 8)
	assert.Equal(t, reserves.Record{ID: 1, Balance: 1111}, demo[0])
	assert.Equal(t, reserves.Record{ID: 8, Balance: 8888}, demo[7])
}

func TestMemoryRecordStore_LoadCopies(t *testing.T) {
	store := NewDemoRecordStore()
	ctx := context.Background()

	first, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	first[0].Balance = 0

	second, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1111), second[0].Balance)
}

func TestMemoryRecordStore_SaveReplaces(t *testing.T) {
	store := NewMemoryRecordStore(nil)
	ctx := context.Background()

	empty, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := []reserves.Record{{ID: 3, Balance: 30}, {ID: 1, Balance: 10}}
	require.NoError(t, store.SaveRecords(ctx, in))
	in[0].ID = 99

	out, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []reserves.Record{{ID: 3, Balance: 30}, {ID: 1, Balance: 10}}, out)
}

func TestMemoryRecordStore_Closed(t *testing.T) {
	store := NewDemoRecordStore()
	require.NoError(t, store.HealthCheck())
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.LoadRecords(context.Background())
	assert.ErrorIs(t, err, records.ErrClosed)
	assert.ErrorIs(t, store.SaveRecords(context.Background(), DemoRecords()), records.ErrClosed)
	assert.ErrorIs(t, store.HealthCheck(), records.ErrClosed)
}

func TestMemoryRecordStore_CancelledContext(t *testing.T) {
	store := NewDemoRecordStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.LoadRecords(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRecordStore_ConcurrentAccess(t *testing.T) {
	store := NewDemoRecordStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.LoadRecords(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SaveRecords(ctx, DemoRecords()))
		}()
	}
	wg.Wait()
}
