package tuple

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

var (
	ErrNotArray      = errors.New("tuple: msgpack array expected")
	ErrTrailingBytes = errors.New("tuple: trailing bytes after tuple")
)

// Tuple is an immutable decoded record. It owns a private copy of its
// msgpack encoding; fields alias that copy.
type Tuple struct {
	data   []byte
	fields []Value
}

// Decode reads one tuple from the front of b and returns the remaining
// bytes. The tuple does not alias b.
func Decode(b []byte) (*Tuple, []byte, error) {
	if msgp.NextType(b) != msgp.ArrayType {
		return nil, b, ErrNotArray
	}
	end, err := msgp.Skip(b)
	if err != nil {
		return nil, b, fmt.Errorf("tuple: truncated record: %w", err)
	}
	data := make([]byte, len(b)-len(end))
	copy(data, b)

	n, o, err := msgp.ReadArrayHeaderBytes(data)
	if err != nil {
		return nil, b, fmt.Errorf("tuple: bad array header: %w", err)
	}
	fields := make([]Value, n)
	for i := range fields {
		if fields[i], o, err = DecodeValue(o); err != nil {
			return nil, b, fmt.Errorf("tuple: field %d: %w", i+1, err)
		}
	}
	return &Tuple{data: data, fields: fields}, end, nil
}

// New decodes data, which must hold exactly one msgpack array.
func New(data []byte) (*Tuple, error) {
	t, rest, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}
	return t, nil
}

// Len returns the number of fields.
func (t *Tuple) Len() int {
	return len(t.fields)
}

// Field returns the field at the zero-based position i. Positions past the
// end report ok == false.
func (t *Tuple) Field(i int) (Value, bool) {
	if i < 0 || i >= len(t.fields) {
		return Value{}, false
	}
	return t.fields[i], true
}

// Data returns the msgpack encoding of the tuple. Callers must not modify it.
func (t *Tuple) Data() []byte {
	return t.data
}

// Size returns the encoded size in bytes.
func (t *Tuple) Size() int {
	return len(t.data)
}

// Values converts all fields into plain Go values.
func (t *Tuple) Values() []any {
	out := make([]any, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Interface()
	}
	return out
}

func (t *Tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Values())
}

func (t *Tuple) String() string {
	b, err := t.MarshalJSON()
	if err != nil {
		return fmt.Sprint(t.Values())
	}
	return string(b)
}
