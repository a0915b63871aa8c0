package tuple_test

import (
	"testing"

	"github.com/davidvella/merger/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

func TestDecode(t *testing.T) {
	first, err := tuple.Encode(uint64(1), "a")
	require.NoError(t, err)
	second, err := tuple.Encode(int64(-7), 2.5, nil, true, []byte{0x01})
	require.NoError(t, err)

	buf := append(append([]byte{}, first...), second...)

	tp, rest, err := tuple.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, tp.Len())
	assert.Equal(t, first, tp.Data())
	assert.Equal(t, second, rest)

	tp, rest, err = tuple.Decode(rest)
	require.NoError(t, err)
	assert.Empty(t, rest)
	require.Equal(t, 5, tp.Len())

	kinds := []tuple.Kind{tuple.KindInt, tuple.KindFloat, tuple.KindNil, tuple.KindBool, tuple.KindBinary}
	for i, want := range kinds {
		f, ok := tp.Field(i)
		require.True(t, ok)
		assert.Equal(t, want, f.Kind(), "field %d", i)
	}
	_, ok := tp.Field(5)
	assert.False(t, ok)
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	buf, err := tuple.Encode("abc")
	require.NoError(t, err)

	tp, _, err := tuple.Decode(buf)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = 0
	}
	f, _ := tp.Field(0)
	assert.Equal(t, "abc", string(f.Bytes()))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{name: "empty", input: nil, wantErr: tuple.ErrNotArray},
		{name: "not an array", input: msgp.AppendUint64(nil, 5), wantErr: tuple.ErrNotArray},
		{name: "map", input: msgp.AppendMapHeader(nil, 0), wantErr: tuple.ErrNotArray},
		{name: "truncated", input: msgp.AppendArrayHeader(nil, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tuple.Decode(tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewTrailingBytes(t *testing.T) {
	b, err := tuple.Encode(1)
	require.NoError(t, err)
	_, err = tuple.New(append(b, 0xc0))
	assert.ErrorIs(t, err, tuple.ErrTrailingBytes)
}

func TestIntegerNormalization(t *testing.T) {
	tp := tuple.MustFromValues(int64(5), int64(-5), uint64(1<<63))

	f, _ := tp.Field(0)
	assert.Equal(t, tuple.KindUint, f.Kind())
	assert.Equal(t, uint64(5), f.Uint())

	f, _ = tp.Field(1)
	assert.Equal(t, tuple.KindInt, f.Kind())
	assert.Equal(t, int64(-5), f.Int())

	f, _ = tp.Field(2)
	assert.Equal(t, tuple.KindUint, f.Kind())
	assert.Equal(t, uint64(1<<63), f.Uint())
}

func TestNestedValues(t *testing.T) {
	tp := tuple.MustFromValues(uint64(1), []any{"x", uint64(2)}, map[string]any{"k": "v"})

	f, _ := tp.Field(1)
	assert.Equal(t, tuple.KindArray, f.Kind())
	assert.Equal(t, []any{"x", uint64(2)}, f.Interface())

	f, _ = tp.Field(2)
	assert.Equal(t, tuple.KindMap, f.Kind())
	assert.Equal(t, map[string]any{"k": "v"}, f.Interface())

	assert.Equal(t, `[1,["x",2],{"k":"v"}]`, tp.String())
}

func TestValueAppendMsgRoundTrip(t *testing.T) {
	values := []tuple.Value{
		tuple.Nil(), tuple.Bool(true), tuple.Uint(9), tuple.Int(-9),
		tuple.Float(1.5), tuple.String("s"), tuple.Binary([]byte{1, 2}),
	}
	for _, v := range values {
		got, rest, err := tuple.DecodeValue(v.AppendMsg(nil))
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.True(t, v.Equal(got), "%v != %v", v, got)
	}
}
