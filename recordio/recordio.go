package recordio

import (
	"errors"
	"fmt"
	"iter"

	"github.com/tinylib/msgp/msgp"
)

// PayloadKey is the map key that wraps the record array of a response body.
const PayloadKey = 0x30

var (
	// ErrInvalidEnvelope is returned when a buffer does not start with a
	// single entry map whose key is PayloadKey and whose value is an array.
	ErrInvalidEnvelope = errors.New("recordio: invalid envelope")
	// ErrInvalidRecord is returned when a record boundary cannot be found.
	ErrInvalidRecord = errors.New("recordio: invalid record")
)

// OpenEnvelope strips the {PayloadKey: [...]} wrapper from b. It returns the
// declared record count and the bytes starting at the first record.
func OpenEnvelope(b []byte) (uint32, []byte, error) {
	if msgp.NextType(b) != msgp.MapType {
		return 0, nil, fmt.Errorf("%w: map expected", ErrInvalidEnvelope)
	}
	n, o, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if n != 1 {
		return 0, nil, fmt.Errorf("%w: map has %d entries, want 1", ErrInvalidEnvelope, n)
	}
	if !isUint(o) {
		return 0, nil, fmt.Errorf("%w: unsigned key expected, got %s", ErrInvalidEnvelope, msgp.NextType(o))
	}
	key, o, err := msgp.ReadUint64Bytes(o)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if key != PayloadKey {
		return 0, nil, fmt.Errorf("%w: key 0x%x, want 0x%x", ErrInvalidEnvelope, key, PayloadKey)
	}
	if msgp.NextType(o) != msgp.ArrayType {
		return 0, nil, fmt.Errorf("%w: array expected", ErrInvalidEnvelope)
	}
	count, o, err := msgp.ReadArrayHeaderBytes(o)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return count, o, nil
}

// isUint reports whether b starts with an unsigned integer encoding:
// positive fixint or uint 8/16/32/64. Signed encodings are rejected even
// when their value is non-negative.
func isUint(b []byte) bool {
	return len(b) > 0 && (b[0] <= 0x7f || (b[0] >= 0xcc && b[0] <= 0xcf))
}

// Next splits the first record off b.
func Next(b []byte) (record, rest []byte, err error) {
	rest, err = msgp.Skip(b)
	if err != nil {
		return nil, b, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return b[:len(b)-len(rest)], rest, nil
}

// Seq iterates over the raw records of an envelope body. Iteration stops
// after the first error.
func Seq(body []byte) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for len(body) > 0 {
			record, rest, err := Next(body)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
			body = rest
		}
	}
}

// ReadRecords opens an envelope and returns all of its records.
func ReadRecords(b []byte) ([][]byte, error) {
	count, body, err := OpenEnvelope(b)
	if err != nil {
		return nil, err
	}
	records := make([][]byte, 0, count)
	for record, err := range Seq(body) {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendEnvelope appends an envelope holding records to dst.
func AppendEnvelope(dst []byte, records ...[]byte) []byte {
	dst = AppendHeader(dst, uint32(len(records)))
	for _, r := range records {
		dst = append(dst, r...)
	}
	return dst
}

// AppendHeader appends the envelope prefix for count records.
func AppendHeader(dst []byte, count uint32) []byte {
	dst = msgp.AppendMapHeader(dst, 1)
	dst = msgp.AppendUint64(dst, PayloadKey)
	return msgp.AppendArrayHeader(dst, count)
}

// HeaderSize returns the length of the envelope prefix for count records.
func HeaderSize(count uint32) int64 {
	return int64(len(AppendHeader(nil, count)))
}
