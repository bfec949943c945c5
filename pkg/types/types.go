package types

import (
	"encoding/json"
	"fmt"
)

// ProofItem is the wire form of one proof step: [side, "0x<sibling>"].
// Side 0 means the sibling is on the left, 1 means it is on the right.
type ProofItem struct {
	_       struct{} `cbor:",toarray"`
	Side    uint8
	Sibling string
}

// MarshalJSON encodes the item as a two element array
func (p ProofItem) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Side, p.Sibling})
}

// UnmarshalJSON decodes a two element [side, hex] array
func (p *ProofItem) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("proof item must be an array: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("proof item must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Side); err != nil {
		return fmt.Errorf("invalid proof item side: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Sibling); err != nil {
		return fmt.Errorf("invalid proof item digest: %w", err)
	}
	return nil
}
