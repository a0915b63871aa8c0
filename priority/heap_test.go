package priority_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/davidvella/merger/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type element struct {
	value int
	slot  int
}

type fixture struct {
	elems []element
	heap  *priority.Heap
}

func newFixture(values ...int) *fixture {
	f := &fixture{}
	for _, v := range values {
		f.elems = append(f.elems, element{value: v, slot: priority.NotInHeap})
	}
	f.heap = priority.NewHeap(
		func(a, b int) bool { return f.elems[a].value < f.elems[b].value },
		func(i int) *int { return &f.elems[i].slot },
	)
	return f
}

func (f *fixture) checkSlots(t *testing.T) {
	t.Helper()
	resident := 0
	for i, e := range f.elems {
		if e.slot == priority.NotInHeap {
			continue
		}
		resident++
		assert.True(t, f.heap.Contains(i))
	}
	assert.Equal(t, f.heap.Len(), resident)
}

func (f *fixture) drain() []int {
	var out []int
	for {
		i, ok := f.heap.Pop()
		if !ok {
			return out
		}
		out = append(out, f.elems[i].value)
	}
}

type opType int

const (
	opInsert opType = iota
	opDelete
	opPop
	opUpdate
)

type operation struct {
	opType opType
	index  int
	value  int
}

func TestHeap(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		ops     []operation
		wantLen int
		wantTop int
	}{
		{
			name:   "basic min heap operations",
			values: []int{5, 3, 7},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 1},
				{opType: opInsert, index: 2},
			},
			wantLen: 3,
			wantTop: 3,
		},
		{
			name:   "duplicate insert ignored",
			values: []int{5, 3},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 0},
			},
			wantLen: 1,
			wantTop: 5,
		},
		{
			name:   "update moves element down",
			values: []int{1, 3, 7},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 1},
				{opType: opInsert, index: 2},
				{opType: opUpdate, index: 0, value: 10},
			},
			wantLen: 3,
			wantTop: 3,
		},
		{
			name:   "update moves element up",
			values: []int{1, 3, 7},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 1},
				{opType: opInsert, index: 2},
				{opType: opUpdate, index: 2, value: 0},
			},
			wantLen: 3,
			wantTop: 0,
		},
		{
			name:   "delete operations",
			values: []int{5, 3, 7},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 1},
				{opType: opInsert, index: 2},
				{opType: opDelete, index: 1},
				{opType: opDelete, index: 1},
			},
			wantLen: 2,
			wantTop: 5,
		},
		{
			name:   "pop operations",
			values: []int{5, 3, 7},
			ops: []operation{
				{opType: opInsert, index: 0},
				{opType: opInsert, index: 1},
				{opType: opInsert, index: 2},
				{opType: opPop},
				{opType: opPop},
			},
			wantLen: 1,
			wantTop: 7,
		},
		{
			name:   "empty heap operations",
			values: []int{1},
			ops: []operation{
				{opType: opPop},
				{opType: opDelete, index: 0},
				{opType: opUpdate, index: 0, value: 4},
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.values...)
			for _, op := range tt.ops {
				switch op.opType {
				case opInsert:
					f.heap.Insert(op.index)
				case opDelete:
					f.heap.Delete(op.index)
				case opPop:
					_, _ = f.heap.Pop()
				case opUpdate:
					f.elems[op.index].value = op.value
					f.heap.Update(op.index)
				}
				f.checkSlots(t)
			}

			assert.Equal(t, tt.wantLen, f.heap.Len())
			top, ok := f.heap.Top()
			if tt.wantLen == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantTop, f.elems[top].value)
		})
	}
}

func TestHeapRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	values := make([]int, 200)
	for i := range values {
		values[i] = r.Intn(50)
	}
	f := newFixture(values...)
	for i := range values {
		f.heap.Insert(i)
	}

	// delete a random third, update another third
	want := make([]int, 0, len(values))
	for i := range values {
		switch i % 3 {
		case 0:
			f.heap.Delete(i)
		case 1:
			f.elems[i].value = r.Intn(50)
			f.heap.Update(i)
			want = append(want, f.elems[i].value)
		default:
			want = append(want, f.elems[i].value)
		}
	}
	f.checkSlots(t)

	slices.Sort(want)
	assert.Equal(t, want, f.drain())
	for _, e := range f.elems {
		assert.Equal(t, priority.NotInHeap, e.slot)
	}
}

func TestHeapReset(t *testing.T) {
	f := newFixture(4, 2, 9)
	for i := range f.elems {
		f.heap.Insert(i)
	}
	f.heap.Reset()
	assert.Equal(t, 0, f.heap.Len())
	for i := range f.elems {
		assert.False(t, f.heap.Contains(i))
	}
}
