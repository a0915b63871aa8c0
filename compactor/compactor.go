package compactor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/merger"
	"github.com/davidvella/merger/recordio"
	"github.com/davidvella/merger/source"
)

// Compact merges inputs with s in the given order and writes the result to
// w as one envelope. It returns the number of bytes written. Nothing is
// written when there are no inputs.
func Compact(ctx context.Context, w io.Writer, s *merger.Session, order int, inputs ...source.Input) (int64, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	if err := s.Start(ctx, inputs, order); err != nil {
		return 0, fmt.Errorf("compactor: failed to start merge: %w", err)
	}
	return Drain(ctx, w, s)
}

// Drain writes every tuple s has left to w as one envelope, so that the
// output can be fed to another session as a buffer input.
func Drain(ctx context.Context, w io.Writer, s *merger.Session) (int64, error) {
	rw := recordio.NewWriter(w)
	for {
		t, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("compactor: %w", err)
		}
		if err := rw.Write(t); err != nil {
			return 0, fmt.Errorf("compactor: %w", err)
		}
	}

	n, err := rw.Close()
	if err != nil {
		return n, fmt.Errorf("compactor: %w", err)
	}
	return n, nil
}
