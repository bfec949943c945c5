package reserves

import (
	"fmt"
	"strconv"
)

// Record is one account balance committed to the reserves tree
type Record struct {
	ID      uint64 `json:"id"`
	Balance uint64 `json:"balance"`
}

// LeafEncoding selects the byte form a record takes before leaf hashing.
// Changing it changes every leaf digest and therefore the root.
type LeafEncoding string

const (
	// LeafEncodingOpen is "(<id>,<balance>" with no closing parenthesis.
	// It is the encoding existing roots were published with.
	LeafEncodingOpen LeafEncoding = "open"
	// LeafEncodingClosed is "(<id>,<balance>)".
	LeafEncodingClosed LeafEncoding = "closed"
)

// DefaultLeafEncoding is used when no encoding is configured
const DefaultLeafEncoding = LeafEncodingOpen

// ParseLeafEncoding validates a configured encoding name
func ParseLeafEncoding(s string) (LeafEncoding, error) {
	switch LeafEncoding(s) {
	case LeafEncodingOpen, LeafEncodingClosed:
		return LeafEncoding(s), nil
	case "":
		return DefaultLeafEncoding, nil
	default:
		return "", fmt.Errorf("unsupported leaf encoding: %s", s)
	}
}

// SerializeRecord returns the canonical leaf bytes for (id, balance) under
// the default encoding
func SerializeRecord(id, balance uint64) []byte {
	return DefaultLeafEncoding.Serialize(id, balance)
}

// Serialize returns the leaf bytes for (id, balance)
func (e LeafEncoding) Serialize(id, balance uint64) []byte {
	buf := make([]byte, 0, 42)
	buf = append(buf, '(')
	buf = strconv.AppendUint(buf, id, 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, balance, 10)
	if e == LeafEncodingClosed {
		buf = append(buf, ')')
	}
	return buf
}
