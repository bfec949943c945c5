package memory

import (
	"context"
	"sync"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
)

// MemoryRecordStore holds records in process memory.
// Records are copied on the way in and out to prevent external mutation.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []reserves.Record
	closed  bool
}

var _ records.IRecordStore = (*MemoryRecordStore)(nil)

// NewMemoryRecordStore creates a store seeded with the given records.
func NewMemoryRecordStore(initial []reserves.Record) *MemoryRecordStore {
	return &MemoryRecordStore{
		records: records.CopyRecords(initial),
	}
}

// NewDemoRecordStore creates a store seeded with DemoRecords.
func NewDemoRecordStore() *MemoryRecordStore {
	return NewMemoryRecordStore(DemoRecords())
}

// DemoRecords returns the eight demo accounts 1..8 with balances 1111..8888.
func DemoRecords() []reserves.Record {
	out := make([]reserves.Record, 0, 8)
	for i := uint64(1); i <= 8; i++ {
		out = append(out, reserves.Record{ID: i, Balance: i * 1111})
	}
	return out
}

func (m *MemoryRecordStore) LoadRecords(ctx context.Context) ([]reserves.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, records.ErrClosed
	}
	return records.CopyRecords(m.records), nil
}

func (m *MemoryRecordStore) SaveRecords(ctx context.Context, recs []reserves.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return records.ErrClosed
	}
	m.records = records.CopyRecords(recs)
	return nil
}

func (m *MemoryRecordStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryRecordStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return records.ErrClosed
	}
	return nil
}
