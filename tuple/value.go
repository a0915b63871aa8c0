package tuple

import (
	"bytes"
	"fmt"
	"math"

	"github.com/tinylib/msgp/msgp"
)

// Kind is the msgpack class of a decoded field.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat
	KindString
	KindBinary
	KindArray
	KindMap
	KindExtension
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindUint:
		return "unsigned"
	case KindInt:
		return "integer"
	case KindFloat:
		return "double"
	case KindString:
		return "string"
	case KindBinary:
		return "varbinary"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Value is a single decoded tuple field. Integers are normalized so that
// every non-negative integer is KindUint and only negative ones are KindInt.
// Arrays, maps and extensions keep their raw msgpack encoding.
type Value struct {
	kind Kind
	u    uint64
	i    int64
	f    float64
	b    []byte
}

func Nil() Value { return Value{kind: KindNil} }
func Bool(v bool) Value { return Value{kind: KindBool, u: boolBit(v)} }
func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func String(v string) Value { return Value{kind: KindString, b: []byte(v)} }
func Binary(v []byte) Value { return Value{kind: KindBinary, b: v} }
func Int(v int64) Value {
	if v >= 0 {
		return Uint(uint64(v))
	}
	return Value{kind: KindInt, i: v}
}

func boolBit(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }
func (v Value) Bool() bool { return v.u != 0 }
func (v Value) Uint() uint64 { return v.u }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bytes() []byte { return v.b }
func (v Value) IsNumber() bool { return v.kind == KindUint || v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsInteger() bool { return v.kind == KindUint || v.kind == KindInt }

// Float64 returns the numeric value widened to float64.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindUint:
		return float64(v.u)
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return math.NaN()
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool, KindUint:
		return v.u == o.u
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	default:
		return bytes.Equal(v.b, o.b)
	}
}

// Interface converts the value into plain Go values suitable for JSON.
func (v Value) Interface() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.Bool()
	case KindUint:
		return v.u
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return string(v.b)
	case KindBinary:
		return v.b
	case KindArray, KindMap:
		out, _, err := decodeAny(v.b)
		if err != nil {
			return v.b
		}
		return out
	default:
		return v.b
	}
}

// AppendMsg appends the msgpack encoding of v to b.
func (v Value) AppendMsg(b []byte) []byte {
	switch v.kind {
	case KindNil:
		return msgp.AppendNil(b)
	case KindBool:
		return msgp.AppendBool(b, v.Bool())
	case KindUint:
		return msgp.AppendUint64(b, v.u)
	case KindInt:
		return msgp.AppendInt64(b, v.i)
	case KindFloat:
		return msgp.AppendFloat64(b, v.f)
	case KindString:
		return msgp.AppendStringFromBytes(b, v.b)
	case KindBinary:
		return msgp.AppendBytes(b, v.b)
	default:
		return append(b, v.b...)
	}
}

func (v Value) String() string {
	return fmt.Sprint(v.Interface())
}

// DecodeValue reads one msgpack value from the front of b. String and
// binary values alias b.
func DecodeValue(b []byte) (Value, []byte, error) {
	switch msgp.NextType(b) {
	case msgp.NilType:
		o, err := msgp.ReadNilBytes(b)
		return Nil(), o, err
	case msgp.BoolType:
		v, o, err := msgp.ReadBoolBytes(b)
		return Bool(v), o, err
	case msgp.UintType:
		v, o, err := msgp.ReadUint64Bytes(b)
		return Uint(v), o, err
	case msgp.IntType:
		v, o, err := msgp.ReadInt64Bytes(b)
		return Int(v), o, err
	case msgp.Float64Type:
		v, o, err := msgp.ReadFloat64Bytes(b)
		return Float(v), o, err
	case msgp.Float32Type:
		v, o, err := msgp.ReadFloat32Bytes(b)
		return Float(float64(v)), o, err
	case msgp.StrType:
		v, o, err := msgp.ReadStringZC(b)
		return Value{kind: KindString, b: v}, o, err
	case msgp.BinType:
		v, o, err := msgp.ReadBytesZC(b)
		return Binary(v), o, err
	case msgp.ArrayType:
		return rawValue(KindArray, b)
	case msgp.MapType:
		return rawValue(KindMap, b)
	case msgp.InvalidType:
		if len(b) == 0 {
			return Value{}, b, msgp.ErrShortBytes
		}
		return Value{}, b, fmt.Errorf("tuple: invalid msgpack prefix 0x%02x", b[0])
	default:
		return rawValue(KindExtension, b)
	}
}

func rawValue(kind Kind, b []byte) (Value, []byte, error) {
	o, err := msgp.Skip(b)
	if err != nil {
		return Value{}, b, err
	}
	return Value{kind: kind, b: b[:len(b)-len(o)]}, o, nil
}

// decodeAny turns nested msgpack into Go values; map keys are rendered with
// fmt so integer keyed maps survive.
func decodeAny(b []byte) (any, []byte, error) {
	switch msgp.NextType(b) {
	case msgp.ArrayType:
		n, o, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return nil, b, err
		}
		out := make([]any, 0, n)
		for range n {
			var item any
			if item, o, err = decodeAny(o); err != nil {
				return nil, b, err
			}
			out = append(out, item)
		}
		return out, o, nil
	case msgp.MapType:
		n, o, err := msgp.ReadMapHeaderBytes(b)
		if err != nil {
			return nil, b, err
		}
		out := make(map[string]any, n)
		for range n {
			var k, item any
			if k, o, err = decodeAny(o); err != nil {
				return nil, b, err
			}
			if item, o, err = decodeAny(o); err != nil {
				return nil, b, err
			}
			out[fmt.Sprint(k)] = item
		}
		return out, o, nil
	default:
		v, o, err := DecodeValue(b)
		if err != nil {
			return nil, b, err
		}
		return v.Interface(), o, nil
	}
}
