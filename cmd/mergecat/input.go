package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/davidvella/merger/index"
	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/tuple"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// readFile returns the contents of path, decompressed according to its
// suffix. "-" reads standard input.
func readFile(path string, stdin io.Reader) ([]byte, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	switch filepath.Ext(path) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	case ".lz4":
		r = lz4.NewReader(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// createFile opens path for writing, compressing according to its suffix.
// "-" or an empty path writes to stdout.
func createFile(path string, stdout io.Writer) (io.WriteCloser, error) {
	var (
		w      io.Writer = stdout
		closer           = func() error { return nil }
	)
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w, closer = f, f.Close
	}

	switch filepath.Ext(path) {
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			closer()
			return nil, err
		}
		return &stackedWriter{Writer: enc, closers: []func() error{enc.Close, closer}}, nil
	case ".lz4":
		zw := lz4.NewWriter(w)
		return &stackedWriter{Writer: zw, closers: []func() error{zw.Close, closer}}, nil
	default:
		return &stackedWriter{Writer: w, closers: []func() error{closer}}, nil
	}
}

type stackedWriter struct {
	io.Writer
	closers []func() error
}

func (w *stackedWriter) Close() error {
	var errs []error
	for _, c := range w.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// isJSONLines reports whether path, without its compression suffix, names
// a JSON lines file.
func isJSONLines(path string) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(path, ".zst"), ".lz4")
	switch filepath.Ext(base) {
	case ".jsonl", ".ndjson", ".json":
		return true
	default:
		return false
	}
}

// parseJSONLines decodes a stream of JSON arrays into tuples.
func parseJSONLines(data []byte) ([]*tuple.Tuple, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out []*tuple.Tuple
	for line := 1; ; line++ {
		var row []any
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		t, err := tuple.FromValues(row...)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		out = append(out, t)
	}
}

// sortTuples loads tuples into an index ordered by def.
func sortTuples(def *keydef.Def, tuples []*tuple.Tuple) (*index.Tree, error) {
	tree, err := index.New(def)
	if err != nil {
		return nil, err
	}
	for i, t := range tuples {
		if err := tree.Insert(t); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return tree, nil
}

// errStdinTwice is returned when "-" is named more than once.
var errStdinTwice = errors.New("standard input can only be read once")

// loadInputs reads every path concurrently and turns it into a merge input.
// Envelope files become buffer inputs; JSON lines files are sorted first
// and become function inputs.
func loadInputs(ctx context.Context, def *keydef.Def, order int, paths []string, stdin io.Reader) ([]source.Input, error) {
	if n := countStdin(paths); n > 1 {
		return nil, fmt.Errorf("%w, got %d", errStdinTwice, n)
	}
	inputs := make([]source.Input, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readFile(path, stdin)
			if err != nil {
				return err
			}
			if !isJSONLines(path) {
				inputs[i] = source.NewBuffer(data)
				return nil
			}
			tuples, err := parseJSONLines(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			tree, err := sortTuples(def, tuples)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			inputs[i] = tree.Source(order)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		source.Release(inputs)
		return nil, err
	}
	return inputs, nil
}

func countStdin(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == "-" {
			n++
		}
	}
	return n
}
