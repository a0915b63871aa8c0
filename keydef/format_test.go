package keydef_test

import (
	"testing"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDef(t *testing.T, specs ...keydef.PartSpec) *keydef.Def {
	t.Helper()
	def, err := keydef.FromSpecs(specs)
	require.NoError(t, err)
	return def
}

func TestFormatValidate(t *testing.T) {
	f, err := keydef.NewFormat(mustDef(t,
		keydef.PartSpec{FieldNo: 1, Type: "unsigned"},
		keydef.PartSpec{FieldNo: 3, Type: "string", IsNullable: true},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, f.MinFields())

	tests := []struct {
		name    string
		values  []any
		wantErr bool
	}{
		{name: "all fields", values: []any{uint64(1), "x", "y"}},
		{name: "nullable field missing", values: []any{uint64(1)}},
		{name: "nullable field nil", values: []any{uint64(1), 2, nil}},
		{name: "required field missing", values: []any{}, wantErr: true},
		{name: "required field nil", values: []any{nil}, wantErr: true},
		{name: "wrong type", values: []any{"1"}, wantErr: true},
		{name: "negative for unsigned", values: []any{int64(-1)}, wantErr: true},
		{name: "wrong nullable type", values: []any{uint64(1), nil, 3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Validate(tuple.MustFromValues(tt.values...))
			if tt.wantErr {
				assert.ErrorIs(t, err, keydef.ErrTupleFormat)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewFormatConflicts(t *testing.T) {
	_, err := keydef.NewFormat(
		mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"}),
		mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "string"}),
	)
	assert.ErrorIs(t, err, keydef.ErrConfig)

	f, err := keydef.NewFormat(
		mustDef(t, keydef.PartSpec{FieldNo: 2, Type: "unsigned", IsNullable: true}),
		mustDef(t, keydef.PartSpec{FieldNo: 2, Type: "unsigned"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, f.MinFields())
}

func TestFormatDecode(t *testing.T) {
	f, err := keydef.NewFormat(mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"}))
	require.NoError(t, err)

	good, err := tuple.Encode(uint64(7))
	require.NoError(t, err)
	bad, err := tuple.Encode("seven")
	require.NoError(t, err)

	tp, rest, err := f.Decode(append(good, bad...))
	require.NoError(t, err)
	assert.Equal(t, good, tp.Data())

	_, _, err = f.Decode(rest)
	assert.ErrorIs(t, err, keydef.ErrTupleFormat)
}
