package pebble

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/tuple"
)

const maxBatchOps = 1000

var (
	ErrStoreClosed = errors.New("pebble: store is closed")
	ErrKeyMismatch = errors.New("pebble: store was created with a different key definition")
)

// Options configures a Store.
type Options struct {
	Path         string
	InMemory     bool // keep everything in memory, Path is only a name
	CacheSize    int64
	MaxOpenFiles int
}

// Store persists tuples in key order. Each Store is bound to the key
// definition it was created with; opening it with another one fails with
// ErrKeyMismatch.
type Store struct {
	db     *pebble.DB
	def    *keydef.Def
	format *keydef.Format
	seq    uint64
}

// Open opens or creates the store at opts.Path.
func Open(def *keydef.Def, opts Options) (*Store, error) {
	format, err := keydef.NewFormat(def)
	if err != nil {
		return nil, fmt.Errorf("pebble: %w", err)
	}

	pebbleOpts := &pebble.Options{
		MaxOpenFiles: opts.MaxOpenFiles,
	}
	if opts.CacheSize > 0 {
		cache := pebble.NewCache(opts.CacheSize)
		defer cache.Unref()
		pebbleOpts.Cache = cache
	}
	if opts.InMemory {
		pebbleOpts.FS = vfs.NewMem()
	} else if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, err
	}

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to open %s: %w", opts.Path, err)
	}

	s := &Store{db: db, def: def, format: format}
	if err := s.checkDef(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// checkDef records the key definition of a new store, or compares it with
// the recorded one.
func (s *Store) checkDef() error {
	want, err := json.Marshal(s.def.Specs())
	if err != nil {
		return err
	}
	got, closer, err := s.db.Get(defKey)
	if errors.Is(err, pebble.ErrNotFound) {
		if err := s.db.Set(defKey, want, pebble.Sync); err != nil {
			return fmt.Errorf("pebble: failed to record key definition: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("pebble: failed to load key definition: %w", err)
	}
	defer closer.Close()
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: created with %s, opened with %s", ErrKeyMismatch, got, want)
	}
	return nil
}

func (s *Store) loadSeq() error {
	v, closer, err := s.db.Get(seqKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pebble: failed to load sequence: %w", err)
	}
	defer closer.Close()
	if len(v) != 8 {
		return fmt.Errorf("pebble: corrupt sequence of %d bytes", len(v))
	}
	s.seq = binary.BigEndian.Uint64(v)
	return nil
}

// Put stores tuples. Tuples are validated against the key definition before
// any of them is written.
func (s *Store) Put(ctx context.Context, tuples ...*tuple.Tuple) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	for i, t := range tuples {
		if err := s.format.Validate(t); err != nil {
			return fmt.Errorf("pebble: tuple %d: %w", i+1, err)
		}
	}

	batch := s.db.NewBatch()
	defer func() { batch.Close() }()

	for _, t := range tuples {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.seq++
		if err := batch.Set(EncodeKey(s.def, t, s.seq), t.Data(), nil); err != nil {
			return err
		}

		// Commit batch if it gets too large
		if batch.Count() >= maxBatchOps {
			if err := s.commit(batch); err != nil {
				return err
			}
			batch.Close()
			batch = s.db.NewBatch()
		}
	}
	return s.commit(batch)
}

func (s *Store) commit(batch *pebble.Batch) error {
	if err := batch.Set(seqKey, binary.BigEndian.AppendUint64(nil, s.seq), nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble: commit: %w", err)
	}
	return nil
}

// Source returns a merge input iterating the stored tuples in key order,
// ascending when order >= 0 and descending otherwise. The iterator reads a
// consistent snapshot and is closed when the session releases the source.
func (s *Store) Source(order int) (*source.Function, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{TupleNamespace},
		UpperBound: []byte{TupleNamespace + 1},
	})
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to iterate tuples: %w", err)
	}

	started := false
	next := func(context.Context) (any, error) {
		var ok bool
		switch {
		case !started && order < 0:
			ok = it.Last()
		case !started:
			ok = it.First()
		case order < 0:
			ok = it.Prev()
		default:
			ok = it.Next()
		}
		started = true
		if !ok {
			if err := it.Error(); err != nil {
				return nil, fmt.Errorf("pebble: iterate: %w", err)
			}
			return nil, nil
		}
		t, err := tuple.New(it.Value())
		if err != nil {
			return nil, fmt.Errorf("pebble: stored tuple: %w", err)
		}
		return t, nil
	}
	return source.FromFunc(next, func() { it.Close() }), nil
}

// Len counts the stored tuples.
func (s *Store) Len() (int, error) {
	if s.db == nil {
		return 0, ErrStoreClosed
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{TupleNamespace},
		UpperBound: []byte{TupleNamespace + 1},
	})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
