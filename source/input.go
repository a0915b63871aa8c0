package source

import (
	"context"
	"iter"
	"sync"

	"github.com/davidvella/merger/tuple"
)

// Input is one entry of the source list given to a merger. The set of
// implementations is closed: *Buffer and *Function.
type Input interface {
	input()
}

// Buffer is a caller-owned byte region holding one envelope of records.
// Sources read it through a cursor that only moves forward; the region is
// never copied or freed, so the caller must keep consumed bytes intact until
// the source is retired.
type Buffer struct {
	data []byte
	rpos int
}

// NewBuffer wraps b without copying it.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{data: b}
}

func (*Buffer) input() {}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.rpos
}

// Bytes returns the unread bytes.
func (b *Buffer) Bytes() []byte {
	return b.data[b.rpos:]
}

// Consumed returns how many bytes the cursor has moved past.
func (b *Buffer) Consumed() int {
	return b.rpos
}

func (b *Buffer) advance(n int) {
	b.rpos += n
}

// Func produces the next value of a function-backed source. Returning a nil
// value and a nil error marks the end of the stream; any value other than a
// *tuple.Tuple is a type error.
type Func func(ctx context.Context) (any, error)

// Function is a function-backed input. The release hook, if any, runs
// exactly once: when the session discards the source, or when the caller
// releases an input no session accepted.
type Function struct {
	fn      Func
	release func()
	once    sync.Once
}

func (*Function) input() {}

// Release runs the release hook unless it already ran. Inputs left in a
// list after a failed Start, or after its terminator, are not released by
// the session.
func (f *Function) Release() {
	f.once.Do(func() {
		if f.release != nil {
			f.release()
		}
	})
}

// Release releases every function input in inputs. Buffers own nothing and
// are skipped.
func Release(inputs []Input) {
	for _, in := range inputs {
		if f, ok := in.(*Function); ok && f != nil {
			f.Release()
		}
	}
}

// FromFunc creates a function input. release may be nil.
func FromFunc(fn Func, release func()) *Function {
	return &Function{fn: fn, release: release}
}

// FromSeq adapts an iterator into a function input. The iterator is pulled
// one element per fetch and stopped when the source is released.
func FromSeq(seq iter.Seq2[*tuple.Tuple, error]) *Function {
	next, stop := iter.Pull2(seq)
	return FromFunc(func(context.Context) (any, error) {
		t, err, ok := next()
		if !ok {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		return t, nil
	}, stop)
}

// FromTuples creates a function input over an already sorted slice.
func FromTuples(tuples ...*tuple.Tuple) *Function {
	i := 0
	return FromFunc(func(context.Context) (any, error) {
		if i == len(tuples) {
			return nil, nil
		}
		t := tuples[i]
		i++
		return t, nil
	}, nil)
}
