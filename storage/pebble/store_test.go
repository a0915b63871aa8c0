package pebble_test

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"slices"
	"testing"

	"github.com/davidvella/merger"
	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/storage/pebble"
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

func setupTestStore(t *testing.T, def *keydef.Def) *pebble.Store {
	t.Helper()
	s, err := pebble.Open(def, pebble.Options{Path: "test", InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEncodeKeyOrder(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		values []any // ascending
	}{
		{
			name:   "unsigned",
			typ:    "unsigned",
			values: []any{uint64(0), uint64(1), uint64(255), uint64(1 << 40), uint64(math.MaxUint64)},
		},
		{
			name:   "integer",
			typ:    "integer",
			values: []any{int64(math.MinInt64), int64(-1 << 40), int64(-1), uint64(0), uint64(7), uint64(math.MaxUint64)},
		},
		{
			name: "number",
			typ:  "number",
			values: []any{
				math.NaN(), math.Inf(-1), -1e300, int64(math.MinInt64), -2.5, int64(-2), -0.5,
				uint64(0), 0.25, uint64(1), 1.5, uint64(1 << 53), uint64(1<<53 + 1),
				float64(1 << 60), uint64(1<<60 + 1), uint64(math.MaxUint64), math.Exp2(64), math.Inf(1),
			},
		},
		{
			name:   "string",
			typ:    "string",
			values: []any{"", "a", "a\x00", "a\x00b", "ab", "b"},
		},
		{
			name:   "varbinary",
			typ:    "varbinary",
			values: []any{[]byte{}, []byte{0}, []byte{0, 0}, []byte{0, 1}, []byte{1}},
		},
		{
			name:   "scalar",
			typ:    "scalar",
			values: []any{false, true, int64(-3), uint64(2), 2.5, "a", "b", []byte{0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: tt.typ})
			var prevKey []byte
			var prev *tuple.Tuple
			for i, v := range tt.values {
				cur := tuple.MustFromValues(v)
				key := pebble.EncodeKey(def, cur, 0)
				if prev != nil {
					assert.Negative(t, def.Compare(prev, cur), "compare %d", i)
					assert.Negative(t, bytes.Compare(prevKey, key), "key %d: %v", i, v)
				}
				prev, prevKey = cur, key
			}
		})
	}
}

func TestEncodeKeyNullable(t *testing.T) {
	def := mustDef(t,
		keydef.PartSpec{FieldNo: 1, Type: "string", IsNullable: true},
		keydef.PartSpec{FieldNo: 2, Type: "unsigned"},
	)
	a := pebble.EncodeKey(def, tuple.MustFromValues(nil, 9), 0)
	b := pebble.EncodeKey(def, tuple.MustFromValues("", 1), 0)
	c := pebble.EncodeKey(def, tuple.MustFromValues("", 2), 0)
	assert.Equal(t, -1, bytes.Compare(a, b))
	assert.Equal(t, -1, bytes.Compare(b, c))
}

func TestEncodeKeyEqualZero(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "number"})
	neg := pebble.EncodeKey(def, tuple.MustFromValues(math.Copysign(0, -1)), 1)
	pos := pebble.EncodeKey(def, tuple.MustFromValues(0.0), 1)
	assert.Equal(t, neg, pos)
}

func TestStoreSource(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "integer"})
	store := setupTestStore(t, def)

	rng := rand.New(rand.NewSource(7))
	var (
		tuples []*tuple.Tuple
		want   []int64
	)
	for i := 0; i < 2500; i++ {
		v := rng.Int63n(1000) - 500
		want = append(want, v)
		tuples = append(tuples, tuple.MustFromValues(v))
	}
	require.NoError(t, store.Put(context.Background(), tuples...))

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 2500, n)

	for _, order := range []int{1, -1} {
		src, err := store.Source(order)
		require.NoError(t, err)

		s, err := merger.NewWithDef(def)
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background(), []source.Input{src}, order))

		var got []int64
		for tup, err := range s.All(context.Background()) {
			require.NoError(t, err)
			v, _ := tup.Field(0)
			if v.Kind() == tuple.KindUint {
				got = append(got, int64(v.Uint()))
			} else {
				got = append(got, v.Int())
			}
		}
		require.NoError(t, s.Close())

		expected := slices.Clone(want)
		slices.Sort(expected)
		if order < 0 {
			slices.Reverse(expected)
		}
		assert.Equal(t, expected, got, "order %d", order)
	}
}

func TestStorePutValidates(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"})
	store := setupTestStore(t, def)

	err := store.Put(context.Background(), tuple.MustFromValues(1), tuple.MustFromValues("x"))
	assert.ErrorIs(t, err, keydef.ErrTupleFormat)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStoreReopen(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"})
	path := filepath.Join(t.TempDir(), "tuples")

	store, err := pebble.Open(def, pebble.Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), tuple.MustFromValues(5), tuple.MustFromValues(5)))
	require.NoError(t, store.Close())

	store, err = pebble.Open(def, pebble.Options{Path: path})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Put(context.Background(), tuple.MustFromValues(5)))

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStoreKeyMismatch(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"})
	path := filepath.Join(t.TempDir(), "tuples")

	store, err := pebble.Open(def, pebble.Options{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	tests := []struct {
		name    string
		specs   []keydef.PartSpec
		wantErr error
	}{
		{name: "same", specs: []keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}}},
		{name: "other type", specs: []keydef.PartSpec{{FieldNo: 1, Type: "integer"}}, wantErr: pebble.ErrKeyMismatch},
		{name: "other field", specs: []keydef.PartSpec{{FieldNo: 2, Type: "unsigned"}}, wantErr: pebble.ErrKeyMismatch},
		{name: "nullable", specs: []keydef.PartSpec{{FieldNo: 1, Type: "unsigned", IsNullable: true}}, wantErr: pebble.ErrKeyMismatch},
		{name: "extra part", specs: []keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}, {FieldNo: 2, Type: "string"}}, wantErr: pebble.ErrKeyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := pebble.Open(mustDef(t, tt.specs...), pebble.Options{Path: path})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, store.Close())
		})
	}
}

func TestStoreClosed(t *testing.T) {
	def := mustDef(t, keydef.PartSpec{FieldNo: 1, Type: "unsigned"})
	store, err := pebble.Open(def, pebble.Options{Path: "closed", InMemory: true})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Put(context.Background(), tuple.MustFromValues(1)), pebble.ErrStoreClosed)
	_, err = store.Source(1)
	assert.ErrorIs(t, err, pebble.ErrStoreClosed)
}
