package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/priority"
	"github.com/davidvella/merger/recordio"
	"github.com/davidvella/merger/tuple"
)

var (
	// ErrEmptyBuffer is returned by Open for a buffer with no unread bytes.
	ErrEmptyBuffer = errors.New("source: empty buffer")
	// ErrMalformed is wrapped by every error caused by bad source data.
	ErrMalformed = errors.New("source: malformed input")
	// ErrNotTuple is returned when a function source yields a non-tuple value.
	ErrNotTuple = fmt.Errorf("%w: tuple expected", ErrMalformed)
	// ErrUnknownInput is returned for Input implementations Open does not know.
	ErrUnknownInput = errors.New("source: unknown input type")
)

// Kind tells the two source variants apart.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

type variant interface {
	kind() Kind
}

type bufferVariant struct {
	buf *Buffer
}

func (bufferVariant) kind() Kind { return KindBuffer }

type functionVariant struct {
	in   *Function
	done bool
}

func (*functionVariant) kind() Kind { return KindFunction }

// Source is one sorted input stream of a merge. It pins the current head
// tuple and records its own position in the merge heap.
type Source struct {
	v      variant
	head   *tuple.Tuple
	slot   int
	failed bool
}

// Open prepares a source for in. Buffer inputs must start with an
// envelope, which is stripped here; an empty buffer yields ErrEmptyBuffer.
func Open(in Input) (*Source, error) {
	switch in := in.(type) {
	case *Buffer:
		if in.Len() == 0 {
			return nil, ErrEmptyBuffer
		}
		_, body, err := recordio.OpenEnvelope(in.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		in.advance(in.Len() - len(body))
		return &Source{v: bufferVariant{buf: in}, slot: priority.NotInHeap}, nil
	case *Function:
		return &Source{
			v:    &functionVariant{in: in},
			slot: priority.NotInHeap,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownInput, in)
	}
}

// Kind returns the source variant.
func (s *Source) Kind() Kind {
	return s.v.kind()
}

// Head returns the pinned tuple, or nil.
func (s *Source) Head() *tuple.Tuple {
	return s.head
}

// Take hands the pinned tuple over to the caller and clears the slot.
func (s *Source) Take() *tuple.Tuple {
	t := s.head
	s.head = nil
	return t
}

// Pin puts t back into the head slot.
func (s *Source) Pin(t *tuple.Tuple) {
	s.head = t
}

// Slot returns the location of the source's heap position.
func (s *Source) Slot() *int {
	return &s.slot
}

// Exhausted reports whether the source can never produce another tuple.
func (s *Source) Exhausted() bool {
	if s.failed {
		return true
	}
	switch v := s.v.(type) {
	case bufferVariant:
		return v.buf.Len() == 0
	case *functionVariant:
		return v.done
	default:
		return true
	}
}

// Fetch advances the source by one tuple. On success the head is either the
// new tuple or nil at end of stream. Tuples are validated against format.
func (s *Source) Fetch(ctx context.Context, format *keydef.Format) error {
	s.head = nil
	if s.failed {
		return nil
	}
	switch v := s.v.(type) {
	case bufferVariant:
		if v.buf.Len() == 0 {
			return nil
		}
		t, rest, err := format.Decode(v.buf.Bytes())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		v.buf.advance(v.buf.Len() - len(rest))
		s.head = t
		return nil
	case *functionVariant:
		if v.done {
			return nil
		}
		val, err := v.in.fn(ctx)
		if err != nil {
			return err
		}
		if val == nil {
			v.done = true
			return nil
		}
		t, ok := val.(*tuple.Tuple)
		if !ok {
			return fmt.Errorf("%w, got %T", ErrNotTuple, val)
		}
		if t == nil {
			v.done = true
			return nil
		}
		if err := format.Validate(t); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		s.head = t
		return nil
	default:
		return ErrUnknownInput
	}
}

// Fail marks the source as finished after a fetch error: later fetches
// report end of stream without reading the buffer or calling the function.
func (s *Source) Fail() {
	s.failed = true
}

// Release drops the pinned tuple and runs the function release hook if it
// has not run yet. Exhausted function sources keep their hook until Release.
func (s *Source) Release() {
	s.head = nil
	if v, ok := s.v.(*functionVariant); ok {
		v.done = true
		v.in.Release()
	}
}
