package codec

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// ContentTypeCBOR is the media type clients send in Accept to get CBOR responses
const ContentTypeCBOR = "application/cbor"

// CBORCodec encodes response bodies with deterministic core CBOR
type CBORCodec struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

// NewCBORCodec builds a codec that encodes in core deterministic mode, so
// equal values always produce equal bytes.
func NewCBORCodec() (*CBORCodec, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CBOR encode mode")
	}
	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CBOR decode mode")
	}
	return &CBORCodec{encMode: encMode, decMode: decMode}, nil
}

func (c *CBORCodec) Marshal(v any) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c *CBORCodec) Unmarshal(data []byte, v any) error {
	return c.decMode.Unmarshal(data, v)
}
