// Package records defines where account records come from. Records are the
// construction input of a reserves database and are read once at startup.
package records

import (
	"context"
	"errors"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
)

// ErrClosed is returned by any operation on a closed source
var ErrClosed = errors.New("record source is closed")

// IRecordSource yields account records in commitment order.
// Implementations must be safe for concurrent use.
type IRecordSource interface {
	// LoadRecords returns every record in the order they were stored.
	// An empty store returns an empty slice, not an error.
	LoadRecords(ctx context.Context) ([]reserves.Record, error)

	// Close releases the underlying storage. Idempotent.
	Close() error
}

// IRecordSink persists records for a later LoadRecords.
type IRecordSink interface {
	// SaveRecords replaces the stored list with records, preserving order.
	SaveRecords(ctx context.Context, records []reserves.Record) error
}

// IRecordStore is a source that can also be written to.
type IRecordStore interface {
	IRecordSource
	IRecordSink

	// HealthCheck reports whether the store is reachable and initialized.
	HealthCheck() error
}
