package records

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
)

// MarshalRecord serializes a Record to JSON bytes.
func MarshalRecord(r *reserves.Record) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil Record")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Record to JSON: %w", err)
	}
	return data, nil
}

// UnmarshalRecord deserializes a Record from JSON bytes.
func UnmarshalRecord(data []byte) (*reserves.Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var r reserves.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Record: %w", err)
	}
	return &r, nil
}

// CopyRecords returns a copy of records that shares no backing array.
func CopyRecords(records []reserves.Record) []reserves.Record {
	out := make([]reserves.Record, len(records))
	copy(out, records)
	return out
}
