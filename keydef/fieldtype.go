package keydef

import (
	"strings"

	"github.com/davidvella/merger/tuple"
)

// FieldType is the declared type of a tuple field.
type FieldType uint8

const (
	FieldTypeAny FieldType = iota
	FieldTypeUnsigned
	FieldTypeString
	FieldTypeNumber
	FieldTypeDouble
	FieldTypeInteger
	FieldTypeBoolean
	FieldTypeVarbinary
	FieldTypeScalar
	FieldTypeArray
	FieldTypeMap
	fieldTypeMax
)

var fieldTypeNames = [...]string{
	FieldTypeAny:       "any",
	FieldTypeUnsigned:  "unsigned",
	FieldTypeString:    "string",
	FieldTypeNumber:    "number",
	FieldTypeDouble:    "double",
	FieldTypeInteger:   "integer",
	FieldTypeBoolean:   "boolean",
	FieldTypeVarbinary: "varbinary",
	FieldTypeScalar:    "scalar",
	FieldTypeArray:     "array",
	FieldTypeMap:       "map",
}

// legacy spellings still found in older schemas.
var fieldTypeAliases = map[string]FieldType{
	"num": FieldTypeNumber,
	"str": FieldTypeString,
}

// FieldTypeByName resolves a type name, case-insensitively.
func FieldTypeByName(name string) (FieldType, bool) {
	name = strings.ToLower(name)
	for t, n := range fieldTypeNames {
		if n == name {
			return FieldType(t), true
		}
	}
	t, ok := fieldTypeAliases[name]
	return t, ok
}

func (t FieldType) String() string {
	if t >= fieldTypeMax {
		return "unknown"
	}
	return fieldTypeNames[t]
}

// Comparable reports whether fields of this type can be key parts.
func (t FieldType) Comparable() bool {
	switch t {
	case FieldTypeAny, FieldTypeArray, FieldTypeMap:
		return false
	default:
		return t < fieldTypeMax
	}
}

// Accepts reports whether a non-nil value conforms to the type.
func (t FieldType) Accepts(v tuple.Value) bool {
	switch t {
	case FieldTypeAny:
		return true
	case FieldTypeUnsigned:
		return v.Kind() == tuple.KindUint
	case FieldTypeInteger:
		return v.IsInteger()
	case FieldTypeNumber, FieldTypeDouble:
		return v.IsNumber()
	case FieldTypeString:
		return v.Kind() == tuple.KindString
	case FieldTypeBoolean:
		return v.Kind() == tuple.KindBool
	case FieldTypeVarbinary:
		return v.Kind() == tuple.KindBinary
	case FieldTypeScalar:
		switch v.Kind() {
		case tuple.KindArray, tuple.KindMap, tuple.KindExtension:
			return false
		default:
			return true
		}
	case FieldTypeArray:
		return v.Kind() == tuple.KindArray
	case FieldTypeMap:
		return v.Kind() == tuple.KindMap
	default:
		return false
	}
}
