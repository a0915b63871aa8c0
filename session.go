package merger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/monitoring"
	"github.com/davidvella/merger/priority"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/tuple"
	"github.com/google/uuid"
)

// State is the position of a session in its lifecycle.
type State uint8

const (
	StateUninitialized State = iota
	StateConfigured
	StateStarted
	StateIterating
	StateExhausted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateStarted:
		return "started"
	case StateIterating:
		return "iterating"
	case StateExhausted:
		return "exhausted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const pointerSize = strconv.IntSize / 8

// Session merges sorted sources into one sorted stream.
//
// A session is not safe for concurrent use. Function sources are called
// synchronously from Start and Next.
type Session struct {
	id     string
	def    *keydef.Def
	format *keydef.Format
	order  int
	state  State

	heap     *priority.Heap
	sources  []*source.Source
	capacity int

	opts  options
	log   *monitoring.Logger
	stats monitoring.Stats
}

// New creates a session ordering tuples by the given key parts.
func New(parts []keydef.PartSpec, opts ...Option) (*Session, error) {
	def, err := keydef.FromSpecs(parts)
	if err != nil {
		return nil, fmt.Errorf("merger: %w", err)
	}
	return NewWithDef(def, opts...)
}

// NewWithDef creates a session from an already built key definition.
func NewWithDef(def *keydef.Def, opts ...Option) (*Session, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: key definition required", ErrConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	format, err := keydef.NewFormat(def)
	if err != nil {
		return nil, fmt.Errorf("merger: %w", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		def:    def,
		format: format,
		order:  1,
		state:  StateConfigured,
		opts:   o,
		stats:  o.stats,
	}
	s.log = monitoring.NewLogger("merger", o.logger).With(slog.String("session", s.id))
	s.heap = priority.NewHeap(s.less, s.slot)

	s.log.Log(context.Background(), slog.LevelDebug, monitoring.EventCreate, "session created",
		slog.String("key_def", def.String()))
	return s, nil
}

// less orders heap elements. Sources without a head sort last.
func (s *Session) less(a, b int) bool {
	ha, hb := s.sources[a].Head(), s.sources[b].Head()
	if ha == nil {
		return false
	}
	if hb == nil {
		return true
	}
	return s.order*s.def.Compare(ha, hb) < 0
}

func (s *Session) slot(i int) *int {
	return s.sources[i].Slot()
}

// Start discards any previous sources and begins a merge over inputs in
// the given order: ascending when order >= 0, descending otherwise.
//
// Inputs are read up to the first nil entry. Empty buffers are skipped.
// When any input is rejected, every source accepted by this call is
// released and the session is left without sources.
func (s *Session) Start(ctx context.Context, inputs []source.Input, order int) error {
	if err := s.usable(); err != nil {
		return err
	}
	if inputs == nil {
		return fmt.Errorf("%w: start requires a list of sources", ErrProtocol)
	}

	s.reset()
	s.order = 1
	if order < 0 {
		s.order = -1
	}
	s.sources = make([]*source.Source, 0, s.opts.initialCapacity)
	s.capacity = s.opts.initialCapacity

	for i, in := range inputs {
		if isTerminator(in) {
			break
		}

		src, err := source.Open(in)
		if errors.Is(err, source.ErrEmptyBuffer) {
			continue
		}
		if err != nil {
			return s.abort(ctx, fmt.Errorf("merger: source %d: %w", i+1, err))
		}
		if err := s.grow(); err != nil {
			src.Release()
			return s.abort(ctx, err)
		}

		idx := len(s.sources)
		s.sources = append(s.sources, src)
		s.stats.SourceOpened(src.Kind().String())

		if err := src.Fetch(ctx, s.format); err != nil {
			return s.abort(ctx, fmt.Errorf("merger: source %d: initial fetch: %w", i+1, err))
		}
		if head := src.Head(); head != nil {
			s.log.Log(ctx, slog.LevelDebug, monitoring.EventFetch, "initial fetch",
				slog.Int("source", idx), slog.Any("tuple", head))
			s.heap.Insert(idx)
		} else {
			s.stats.SourceRetired(src.Kind().String())
		}
	}

	s.state = StateStarted
	s.stats.SetHeapSources(s.heap.Len())
	s.log.Log(ctx, slog.LevelInfo, monitoring.EventStart, "merge started",
		slog.Int("sources", len(s.sources)),
		slog.Int("live", s.heap.Len()),
		slog.Int("order", s.order))
	return nil
}

// isTerminator reports whether in ends the input list. Typed nil pointers
// terminate the list like an untyped nil.
func isTerminator(in source.Input) bool {
	switch in := in.(type) {
	case nil:
		return true
	case *source.Buffer:
		return in == nil
	case *source.Function:
		return in == nil
	default:
		return false
	}
}

// grow makes room for one more source, doubling the array when it is full.
func (s *Session) grow() error {
	if s.opts.maxSources > 0 && len(s.sources) >= s.opts.maxSources {
		return &ResourceError{Size: (len(s.sources) + 1) * pointerSize, What: "merger sources"}
	}
	if len(s.sources) < s.capacity {
		return nil
	}
	newCap := s.capacity * 2
	if s.opts.maxSources > 0 && newCap > s.opts.maxSources {
		newCap = s.opts.maxSources
	}
	grown := make([]*source.Source, len(s.sources), newCap)
	copy(grown, s.sources)
	s.sources = grown
	s.capacity = newCap
	return nil
}

// abort releases the sources accumulated by a failed Start.
func (s *Session) abort(ctx context.Context, err error) error {
	s.reset()
	s.state = StateConfigured
	s.stats.RecordError("start")
	s.log.Log(ctx, slog.LevelError, monitoring.EventAbort, "merge start aborted", slog.Any("error", err))
	return err
}

// reset releases every source. Function sources run their release hook.
func (s *Session) reset() {
	s.heap.Reset()
	for _, src := range s.sources {
		src.Release()
	}
	s.sources = nil
	s.capacity = 0
	s.stats.SetHeapSources(0)
}

// Next returns the next tuple in merge order, or io.EOF once every source
// is exhausted. The caller owns the returned tuple.
//
// If refilling the source that produced the tuple fails, the tuple stays
// with its source and the error is returned. That source reports end of
// stream from then on, so the following call hands the tuple out and
// retires the source.
func (s *Session) Next(ctx context.Context) (*tuple.Tuple, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}

	top, ok := s.heap.Top()
	if !ok {
		if s.state == StateStarted || s.state == StateIterating {
			s.state = StateExhausted
		}
		return nil, io.EOF
	}

	src := s.sources[top]
	t := src.Take()
	if err := src.Fetch(ctx, s.format); err != nil {
		src.Fail()
		src.Pin(t)
		s.stats.RecordError("fetch")
		s.log.Log(ctx, slog.LevelError, monitoring.EventError, "source fetch failed",
			slog.Int("source", top), slog.Any("error", err))
		return nil, fmt.Errorf("merger: source %d: %w", top+1, err)
	}

	if head := src.Head(); head != nil {
		s.log.Log(ctx, slog.LevelDebug, monitoring.EventUpdate, "source update",
			slog.Int("source", top), slog.Any("tuple", head))
		s.heap.Update(top)
	} else {
		s.log.Log(ctx, slog.LevelDebug, monitoring.EventRetire, "source delete",
			slog.Int("source", top))
		s.heap.Delete(top)
		s.stats.SourceRetired(src.Kind().String())
	}

	s.state = StateIterating
	s.stats.TupleEmitted()
	s.stats.SetHeapSources(s.heap.Len())
	return t, nil
}

// All returns an iterator over the remaining tuples. Iteration stops after
// the first error, which is yielded with a nil tuple.
func (s *Session) All(ctx context.Context) iter.Seq2[*tuple.Tuple, error] {
	return func(yield func(*tuple.Tuple, error) bool) {
		for {
			t, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Peek compares the tuple Next would return against key, a msgpack array
// of key parts, in merge order: a negative result means that tuple comes
// before key. ok is false when the merge is exhausted. Peek does not move
// the merge.
func (s *Session) Peek(key []byte) (cmp int, ok bool, err error) {
	if err := s.usable(); err != nil {
		return 0, false, err
	}
	top, ok := s.heap.Top()
	if !ok {
		return 0, false, nil
	}
	c, err := s.def.CompareWithPackedKey(s.sources[top].Head(), key)
	if err != nil {
		return 0, false, fmt.Errorf("merger: peek: %w", err)
	}
	return s.order * c, true, nil
}

// Close releases every source and the key definition. Calling Close more
// than once, or on a session not created with New, is a no-op.
func (s *Session) Close() error {
	if s == nil || s.state == StateClosed || s.state == StateUninitialized {
		return nil
	}
	s.reset()
	s.def = nil
	s.format = nil
	s.state = StateClosed
	s.log.Log(context.Background(), slog.LevelDebug, monitoring.EventClose, "session closed")
	return nil
}

func (s *Session) usable() error {
	if s == nil || s.state == StateUninitialized {
		return fmt.Errorf("%w: session not created with New", ErrProtocol)
	}
	if s.state == StateClosed {
		return ErrClosed
	}
	return nil
}

// ID returns the session identifier attached to its log entries.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Order returns +1 for an ascending merge and -1 for a descending one.
func (s *Session) Order() int { return s.order }

// KeyDef returns the key definition, or nil after Close.
func (s *Session) KeyDef() *keydef.Def { return s.def }

// Len returns the number of sources that still have tuples to hand out.
func (s *Session) Len() int {
	if s.heap == nil {
		return 0
	}
	return s.heap.Len()
}

// Sources returns the number of sources accepted by the last Start.
func (s *Session) Sources() int { return len(s.sources) }
