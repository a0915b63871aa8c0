package keydef_test

import (
	"testing"

	"github.com/davidvella/merger/keydef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSpecs(t *testing.T) {
	tests := []struct {
		name      string
		specs     []keydef.PartSpec
		wantParts []keydef.Part
		wantErr   string
	}{
		{
			name:  "single unsigned part",
			specs: []keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}},
			wantParts: []keydef.Part{
				{FieldNo: 0, Type: keydef.FieldTypeUnsigned},
			},
		},
		{
			name: "multi part with nullable and alias",
			specs: []keydef.PartSpec{
				{FieldNo: 2, Type: "str"},
				{FieldNo: 4, Type: "Integer", IsNullable: true},
			},
			wantParts: []keydef.Part{
				{FieldNo: 1, Type: keydef.FieldTypeString},
				{FieldNo: 3, Type: keydef.FieldTypeInteger, IsNullable: true},
			},
		},
		{
			name:    "no parts",
			wantErr: "at least one part",
		},
		{
			name:    "missing fieldno",
			specs:   []keydef.PartSpec{{Type: "unsigned"}},
			wantErr: "part 1: fieldno must not be nil",
		},
		{
			name:    "negative fieldno",
			specs:   []keydef.PartSpec{{FieldNo: -3, Type: "unsigned"}},
			wantErr: "fieldno must be positive",
		},
		{
			name:    "missing type",
			specs:   []keydef.PartSpec{{FieldNo: 1}, {FieldNo: 2}},
			wantErr: "part 1: type must not be nil",
		},
		{
			name:    "unknown type",
			specs:   []keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}, {FieldNo: 2, Type: "uuid"}},
			wantErr: "part 2: unknown field type: uuid",
		},
		{
			name:    "non comparable type",
			specs:   []keydef.PartSpec{{FieldNo: 1, Type: "map"}},
			wantErr: "cannot be used as a key part",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := keydef.FromSpecs(tt.specs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, keydef.ErrConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, def)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantParts, def.Parts())
			assert.Equal(t, len(tt.wantParts), def.PartCount())
		})
	}
}

func TestSpecsRoundTrip(t *testing.T) {
	specs := []keydef.PartSpec{
		{FieldNo: 1, Type: "unsigned"},
		{FieldNo: 3, Type: "string", IsNullable: true},
	}
	def, err := keydef.FromSpecs(specs)
	require.NoError(t, err)
	assert.Equal(t, specs, def.Specs())
	assert.Equal(t, "{1:unsigned, 3:string?}", def.String())
}

func TestPartErrorAs(t *testing.T) {
	_, err := keydef.FromSpecs([]keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}, {FieldNo: 0, Type: "string"}})
	var pe *keydef.PartError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Part)
}

func TestFieldTypeByName(t *testing.T) {
	for _, name := range []string{"any", "unsigned", "string", "number", "double", "integer",
		"boolean", "varbinary", "scalar", "array", "map"} {
		ft, ok := keydef.FieldTypeByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, ft.String())
	}
	ft, ok := keydef.FieldTypeByName("num")
	assert.True(t, ok)
	assert.Equal(t, keydef.FieldTypeNumber, ft)

	_, ok = keydef.FieldTypeByName("decimal128")
	assert.False(t, ok)
}
