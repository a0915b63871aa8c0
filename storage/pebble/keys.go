package pebble

import (
	"encoding/binary"
	"math"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/tuple"
)

// Namespace prefixes keep tuple keys apart from store metadata.
const (
	TupleNamespace    byte = 'd'
	MetadataNamespace byte = 'm'
)

var (
	seqKey = []byte{MetadataNamespace, 's', 'e', 'q'}
	defKey = []byte{MetadataNamespace, 'd', 'e', 'f'}
)

// Value classes, in the order keydef.CompareValues ranks them.
const (
	classNil byte = iota
	classBool
	classNumber
	classString
	classBinary
	classOther
)

// Integer tiebreak classes for numbers sharing the same float64 rounding.
const (
	intBelow byte = iota
	intNegative
	intNonNegative
	intAbove
)

// EncodeKey returns a byte string whose bytewise order matches the order
// def.Compare gives t, followed by seq so that equal keys stay distinct.
func EncodeKey(def *keydef.Def, t *tuple.Tuple, seq uint64) []byte {
	b := make([]byte, 0, 64)
	b = append(b, TupleNamespace)
	for _, p := range def.Parts() {
		v, _ := t.Field(p.FieldNo)
		b = appendValue(b, v)
	}
	return binary.BigEndian.AppendUint64(b, seq)
}

func appendValue(b []byte, v tuple.Value) []byte {
	switch v.Kind() {
	case tuple.KindNil:
		return append(b, classNil)
	case tuple.KindBool:
		if v.Bool() {
			return append(b, classBool, 1)
		}
		return append(b, classBool, 0)
	case tuple.KindUint, tuple.KindInt, tuple.KindFloat:
		return appendNumber(append(b, classNumber), v)
	case tuple.KindString:
		return appendBytes(append(b, classString), v.Bytes())
	case tuple.KindBinary:
		return appendBytes(append(b, classBinary), v.Bytes())
	default:
		return appendBytes(append(b, classOther), v.Bytes())
	}
}

// appendNumber writes the float64 rounding of v, then the exact integer
// value so integers above 2^53 sharing a rounding still order correctly.
// NaN sorts before every number.
func appendNumber(b []byte, v tuple.Value) []byte {
	f := v.Float64()
	if math.IsNaN(f) {
		return append(b, 0)
	}
	b = append(b, 1)
	b = binary.BigEndian.AppendUint64(b, orderedFloatBits(f))

	switch v.Kind() {
	case tuple.KindUint:
		return binary.BigEndian.AppendUint64(append(b, intNonNegative), v.Uint())
	case tuple.KindInt:
		return binary.BigEndian.AppendUint64(append(b, intNegative), uint64(v.Int()))
	}

	f = math.Trunc(f)
	switch {
	case f >= math.Exp2(64):
		return binary.BigEndian.AppendUint64(append(b, intAbove), 0)
	case f >= 0:
		return binary.BigEndian.AppendUint64(append(b, intNonNegative), uint64(f))
	case f >= -math.Exp2(63):
		return binary.BigEndian.AppendUint64(append(b, intNegative), uint64(int64(f)))
	default:
		return binary.BigEndian.AppendUint64(append(b, intBelow), 0)
	}
}

// orderedFloatBits maps f to an unsigned integer with the same order.
func orderedFloatBits(f float64) uint64 {
	if f == 0 {
		f = 0 // -0 and +0 are equal
	}
	u := math.Float64bits(f)
	if u&(1<<63) != 0 {
		return ^u
	}
	return u | 1<<63
}

// appendBytes writes p so that prefixes sort first: 0x00 is escaped as
// 0x00 0xff and the value ends with 0x00 0x01.
func appendBytes(b, p []byte) []byte {
	for _, c := range p {
		if c == 0 {
			b = append(b, 0, 0xff)
			continue
		}
		b = append(b, c)
	}
	return append(b, 0, 1)
}
