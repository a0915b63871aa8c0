package recordio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/davidvella/merger/tuple"
)

var (
	ErrWriterClosed   = errors.New("recordio: writer closed")
	ErrTooManyRecords = errors.New("recordio: too many records for one envelope")
)

// Writer builds a single envelope. The record count precedes the records on
// the wire, so records are buffered until Close.
type Writer struct {
	w      io.Writer
	body   bytes.Buffer
	count  uint32
	closed bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write buffers one tuple.
func (w *Writer) Write(t *tuple.Tuple) error {
	return w.WriteRaw(t.Data())
}

// WriteRaw buffers one already encoded record.
func (w *Writer) WriteRaw(record []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.count == math.MaxUint32 {
		return ErrTooManyRecords
	}
	w.body.Write(record)
	w.count++
	return nil
}

// Count returns the number of buffered records.
func (w *Writer) Count() int {
	return int(w.count)
}

// Close writes the envelope and returns the number of bytes written.
func (w *Writer) Close() (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	w.closed = true

	hn, err := w.w.Write(AppendHeader(nil, w.count))
	if err != nil {
		return int64(hn), fmt.Errorf("failed to write envelope header: %w", err)
	}
	bn, err := w.w.Write(w.body.Bytes())
	if err != nil {
		return int64(hn + bn), fmt.Errorf("error writing records: %w", err)
	}
	w.body.Reset()
	return int64(hn + bn), nil
}
