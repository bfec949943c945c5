package hashing

import (
	"errors"
	"fmt"
)

// ErrUnknownAlgorithm is returned by Lookup for names nobody registered
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// DigestLengthError reports a digest whose length does not match its algorithm
type DigestLengthError struct {
	Algorithm string
	Want      int
	Got       int
}

func (e *DigestLengthError) Error() string {
	return fmt.Sprintf("%s digest must be %d bytes, got %d", e.Algorithm, e.Want, e.Got)
}
