package index

import (
	"fmt"
	"iter"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/tuple"
	"github.com/google/btree"
)

const degree = 16

type item struct {
	t   *tuple.Tuple
	seq uint64
}

// Tree is an in-memory ordered set of tuples keyed by a key definition.
// Tuples with equal keys are kept in insertion order.
type Tree struct {
	def    *keydef.Def
	format *keydef.Format
	items  *btree.BTreeG[item]
	seq    uint64
}

// New creates an empty tree ordered by def.
func New(def *keydef.Def) (*Tree, error) {
	format, err := keydef.NewFormat(def)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &Tree{
		def:    def,
		format: format,
		items: btree.NewG[item](degree, func(a, b item) bool {
			if c := def.Compare(a.t, b.t); c != 0 {
				return c < 0
			}
			return a.seq < b.seq
		}),
	}, nil
}

// Insert adds t. Tuples not matching the key definition are rejected.
func (tr *Tree) Insert(t *tuple.Tuple) error {
	if err := tr.format.Validate(t); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	tr.seq++
	tr.items.ReplaceOrInsert(item{t: t, seq: tr.seq})
	return nil
}

// Len returns the number of tuples.
func (tr *Tree) Len() int {
	return tr.items.Len()
}

// All returns the tuples in key order, ascending when order >= 0 and
// descending otherwise.
func (tr *Tree) All(order int) iter.Seq[*tuple.Tuple] {
	items := tr.items.Clone()
	return func(yield func(*tuple.Tuple) bool) {
		visit := func(it item) bool { return yield(it.t) }
		if order < 0 {
			items.Descend(visit)
			return
		}
		items.Ascend(visit)
	}
}

// Source returns a merge input reading a snapshot of the tree in the given
// order. Later inserts do not affect it.
func (tr *Tree) Source(order int) *source.Function {
	all := tr.All(order)
	return source.FromSeq(func(yield func(*tuple.Tuple, error) bool) {
		for t := range all {
			if !yield(t, nil) {
				return
			}
		}
	})
}
