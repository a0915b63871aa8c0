package keydef

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig is wrapped by every key definition validation error.
var ErrConfig = errors.New("keydef: invalid key definition")

// PartError reports a problem with a single key part. Part is 1-based.
type PartError struct {
	Part   int
	Reason string
}

func (e *PartError) Error() string {
	return fmt.Sprintf("keydef: part %d: %s", e.Part, e.Reason)
}

func (e *PartError) Unwrap() error { return ErrConfig }

// Collation identifies a string collation. Only CollationNone is supported.
type Collation uint32

const CollationNone Collation = 0

// Part is one component of a multi-part key.
type Part struct {
	FieldNo    int // zero-based
	Type       FieldType
	IsNullable bool
	Collation  Collation
}

// PartSpec is the external description of a key part, as supplied by
// callers and configuration files.
type PartSpec struct {
	// FieldNo is 1-based; zero means it was not supplied.
	FieldNo    int    `json:"fieldno" mapstructure:"fieldno" yaml:"fieldno"`
	Type       string `json:"type" mapstructure:"type" yaml:"type"`
	IsNullable bool   `json:"is_nullable,omitempty" mapstructure:"is_nullable" yaml:"is_nullable"`
}

// Def is an immutable multi-part key definition.
type Def struct {
	parts []Part
}

// New validates parts and builds a definition from them.
func New(parts ...Part) (*Def, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: at least one part is required", ErrConfig)
	}
	d := &Def{parts: make([]Part, len(parts))}
	for i, p := range parts {
		switch {
		case p.FieldNo < 0:
			return nil, &PartError{Part: i + 1, Reason: fmt.Sprintf("invalid field number %d", p.FieldNo)}
		case p.Type >= fieldTypeMax:
			return nil, &PartError{Part: i + 1, Reason: "unknown field type"}
		case !p.Type.Comparable():
			return nil, &PartError{Part: i + 1, Reason: fmt.Sprintf("field type %s cannot be used as a key part", p.Type)}
		case p.Collation != CollationNone:
			return nil, &PartError{Part: i + 1, Reason: "collations are not supported"}
		}
		d.parts[i] = p
	}
	return d, nil
}

// FromSpecs converts external part descriptions, translating 1-based field
// numbers to 0-based ones.
func FromSpecs(specs []PartSpec) (*Def, error) {
	parts := make([]Part, 0, len(specs))
	for i, s := range specs {
		if s.FieldNo == 0 {
			return nil, &PartError{Part: i + 1, Reason: "fieldno must not be nil"}
		}
		if s.FieldNo < 0 {
			return nil, &PartError{Part: i + 1, Reason: fmt.Sprintf("fieldno must be positive, got %d", s.FieldNo)}
		}
		if s.Type == "" {
			return nil, &PartError{Part: i + 1, Reason: "type must not be nil"}
		}
		typ, ok := FieldTypeByName(s.Type)
		if !ok {
			return nil, &PartError{Part: i + 1, Reason: fmt.Sprintf("unknown field type: %s", s.Type)}
		}
		parts = append(parts, Part{
			FieldNo:    s.FieldNo - 1,
			Type:       typ,
			IsNullable: s.IsNullable,
			Collation:  CollationNone,
		})
	}
	return New(parts...)
}

// PartCount returns the number of key parts.
func (d *Def) PartCount() int {
	return len(d.parts)
}

// Parts returns a copy of the key parts.
func (d *Def) Parts() []Part {
	return append([]Part(nil), d.parts...)
}

// Specs converts the definition back into its external form.
func (d *Def) Specs() []PartSpec {
	out := make([]PartSpec, len(d.parts))
	for i, p := range d.parts {
		out[i] = PartSpec{FieldNo: p.FieldNo + 1, Type: p.Type.String(), IsNullable: p.IsNullable}
	}
	return out
}

func (d *Def) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range d.parts {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d:%s", p.FieldNo+1, p.Type)
		if p.IsNullable {
			sb.WriteString("?")
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
