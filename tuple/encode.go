package tuple

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// Encode returns the msgpack array holding values. Supported values are
// those accepted by msgp.AppendIntf, including json.Number.
func Encode(values ...any) ([]byte, error) {
	b := msgp.AppendArrayHeader(nil, uint32(len(values)))
	var err error
	for i, v := range values {
		if b, err = msgp.AppendIntf(b, v); err != nil {
			return nil, fmt.Errorf("tuple: encode field %d: %w", i+1, err)
		}
	}
	return b, nil
}

// FromValues encodes values and decodes them back into a Tuple.
func FromValues(values ...any) (*Tuple, error) {
	b, err := Encode(values...)
	if err != nil {
		return nil, err
	}
	return New(b)
}

// MustFromValues is like FromValues but panics on error.
func MustFromValues(values ...any) *Tuple {
	t, err := FromValues(values...)
	if err != nil {
		panic(err)
	}
	return t
}

// EncodeKey returns a msgpack array of key parts, the form accepted by
// key comparisons against raw keys.
func EncodeKey(parts ...any) ([]byte, error) {
	return Encode(parts...)
}
