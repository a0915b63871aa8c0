package keydef

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/davidvella/merger/tuple"
	"github.com/tinylib/msgp/msgp"
)

// ErrBadKey is returned for raw keys that cannot be compared.
var ErrBadKey = errors.New("keydef: malformed key")

// Compare returns the three-way comparison of a and b projected onto the
// key parts. Missing fields compare as nil.
func (d *Def) Compare(a, b *tuple.Tuple) int {
	for _, p := range d.parts {
		va, _ := a.Field(p.FieldNo)
		vb, _ := b.Field(p.FieldNo)
		if c := CompareValues(va, vb); c != 0 {
			return c
		}
	}
	return 0
}

// CompareWithKey compares t against the first partCount key parts encoded
// back to back in key (no array header).
func (d *Def) CompareWithKey(t *tuple.Tuple, key []byte, partCount int) (int, error) {
	if partCount < 0 || partCount > len(d.parts) {
		return 0, fmt.Errorf("%w: %d parts given, definition has %d", ErrBadKey, partCount, len(d.parts))
	}
	for _, p := range d.parts[:partCount] {
		kv, rest, err := tuple.DecodeValue(key)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrBadKey, err)
		}
		key = rest
		tv, _ := t.Field(p.FieldNo)
		if c := CompareValues(tv, kv); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// CompareWithPackedKey compares t against key, a msgpack array holding a
// prefix of the key parts.
func (d *Def) CompareWithPackedKey(t *tuple.Tuple, key []byte) (int, error) {
	n, rest, err := msgp.ReadArrayHeaderBytes(key)
	if err != nil {
		return 0, fmt.Errorf("%w: array expected: %w", ErrBadKey, err)
	}
	return d.CompareWithKey(t, rest, int(n))
}

// class ranks for mixed-type ordering; matches scalar field semantics.
func class(v tuple.Value) int {
	switch v.Kind() {
	case tuple.KindNil:
		return 0
	case tuple.KindBool:
		return 1
	case tuple.KindUint, tuple.KindInt, tuple.KindFloat:
		return 2
	case tuple.KindString:
		return 3
	case tuple.KindBinary:
		return 4
	default:
		return 5
	}
}

// CompareValues orders two field values: nil < boolean < number < string <
// varbinary < everything else. Numbers compare by value across integer and
// floating point encodings.
func CompareValues(a, b tuple.Value) int {
	ca, cb := class(a), class(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}
	switch ca {
	case 0:
		return 0
	case 1:
		return cmp.Compare(boolRank(a), boolRank(b))
	case 2:
		return compareNumbers(a, b)
	default:
		return bytes.Compare(a.Bytes(), b.Bytes())
	}
}

func boolRank(v tuple.Value) int {
	if v.Bool() {
		return 1
	}
	return 0
}

func compareNumbers(a, b tuple.Value) int {
	switch {
	case a.Kind() == tuple.KindFloat && b.Kind() == tuple.KindFloat:
		return cmp.Compare(a.Float(), b.Float())
	case a.Kind() == tuple.KindFloat:
		return compareFloatInteger(a.Float(), b)
	case b.Kind() == tuple.KindFloat:
		return -compareFloatInteger(b.Float(), a)
	case a.Kind() == tuple.KindUint && b.Kind() == tuple.KindUint:
		return cmp.Compare(a.Uint(), b.Uint())
	case a.Kind() == tuple.KindInt && b.Kind() == tuple.KindInt:
		return cmp.Compare(a.Int(), b.Int())
	case a.Kind() == tuple.KindInt:
		return -1
	default:
		return 1
	}
}

// compareFloatInteger compares f with an integer value without losing
// precision for integers above 2^53. NaN sorts before every number.
func compareFloatInteger(f float64, v tuple.Value) int {
	if math.IsNaN(f) {
		return -1
	}
	if v.Kind() == tuple.KindUint {
		if f < 0 {
			return -1
		}
		if f >= math.Exp2(64) {
			return 1
		}
		fu := uint64(f)
		if c := cmp.Compare(fu, v.Uint()); c != 0 {
			return c
		}
		if f > float64(fu) {
			return 1
		}
		return 0
	}
	if f >= 0 {
		return 1
	}
	if f < -math.Exp2(63) {
		return -1
	}
	fi := int64(f)
	if c := cmp.Compare(fi, v.Int()); c != 0 {
		return c
	}
	if f < float64(fi) {
		return -1
	}
	return 0
}
