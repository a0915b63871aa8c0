// Package keydef implements multi-part key definitions and the comparator the
// merger orders tuples with.
//
// A key definition is an ordered list of parts. Each part names a zero-based
// field position, a field type and whether the field may be nil:
//
//	def, err := keydef.FromSpecs([]keydef.PartSpec{
//	    {FieldNo: 1, Type: "unsigned"},
//	    {FieldNo: 3, Type: "string", IsNullable: true},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if def.Compare(a, b) < 0 {
//	    // a sorts before b
//	}
//
// Comparison follows scalar ordering: nil sorts before booleans, booleans
// before numbers, numbers before strings and strings before binary values.
// Integers and floating point numbers compare by value.
//
// A Format derived from key definitions validates tuples before they enter a
// merge so the comparator never sees a field of the wrong type.
package keydef
