package keydef

import (
	"errors"
	"fmt"
	"sort"

	"github.com/davidvella/merger/tuple"
)

// ErrTupleFormat is wrapped by tuple validation failures.
var ErrTupleFormat = errors.New("keydef: tuple does not match format")

type fieldRule struct {
	fieldNo  int
	typ      FieldType
	nullable bool
}

// Format describes the fields that tuples must carry for a set of key
// definitions to be able to compare them.
type Format struct {
	rules     []fieldRule
	minFields int
}

// NewFormat derives a tuple format from one or more key definitions. A field
// referenced with two different types is a configuration error; a field is
// nullable only if every reference allows it.
func NewFormat(defs ...*Def) (*Format, error) {
	byField := make(map[int]fieldRule)
	for _, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("%w: nil key definition", ErrConfig)
		}
		for _, p := range d.parts {
			r, ok := byField[p.FieldNo]
			if !ok {
				byField[p.FieldNo] = fieldRule{fieldNo: p.FieldNo, typ: p.Type, nullable: p.IsNullable}
				continue
			}
			if r.typ != p.Type {
				return nil, fmt.Errorf("%w: field %d has type %q in one part, but type %q in another",
					ErrConfig, p.FieldNo+1, r.typ, p.Type)
			}
			r.nullable = r.nullable && p.IsNullable
			byField[p.FieldNo] = r
		}
	}

	f := &Format{rules: make([]fieldRule, 0, len(byField))}
	for _, r := range byField {
		f.rules = append(f.rules, r)
		if !r.nullable && r.fieldNo+1 > f.minFields {
			f.minFields = r.fieldNo + 1
		}
	}
	sort.Slice(f.rules, func(i, j int) bool { return f.rules[i].fieldNo < f.rules[j].fieldNo })
	return f, nil
}

// MinFields returns the smallest field count a valid tuple may have.
func (f *Format) MinFields() int {
	return f.minFields
}

// Validate checks t against the format.
func (f *Format) Validate(t *tuple.Tuple) error {
	if t.Len() < f.minFields {
		return fmt.Errorf("%w: tuple has %d fields, at least %d required",
			ErrTupleFormat, t.Len(), f.minFields)
	}
	for _, r := range f.rules {
		v, ok := t.Field(r.fieldNo)
		if !ok || v.IsNil() {
			if r.nullable {
				continue
			}
			return fmt.Errorf("%w: field %d must not be nil", ErrTupleFormat, r.fieldNo+1)
		}
		if !r.typ.Accepts(v) {
			return fmt.Errorf("%w: field %d type mismatch: have %s, expected %s",
				ErrTupleFormat, r.fieldNo+1, v.Kind(), r.typ)
		}
	}
	return nil
}

// Decode reads one tuple from the front of b and validates it.
func (f *Format) Decode(b []byte) (*tuple.Tuple, []byte, error) {
	t, rest, err := tuple.Decode(b)
	if err != nil {
		return nil, b, err
	}
	if err := f.Validate(t); err != nil {
		return nil, b, err
	}
	return t, rest, nil
}
