package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/merger"
	"github.com/davidvella/merger/compactor"
	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/monitoring"
	"github.com/davidvella/merger/source"
	"github.com/davidvella/merger/storage/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type mergeFlags struct {
	out         string
	stores      []string
	metricsFile string
}

func newMergeCmd(a *app) *cobra.Command {
	var f mergeFlags
	cmd := &cobra.Command{
		Use:   "merge [files...]",
		Short: "Merge sorted inputs into one sorted stream",
		Long: `Merge sorted inputs into one sorted stream.

Every input must already be sorted by the key in the requested order,
except JSON lines files, which are sorted while loading. The result is
written as JSON lines, or as one envelope with --output envelope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMerge(cmd.Context(), cmd.InOrStdin(), args, f)
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().String("output", "json", "output format: json or envelope")
	cmd.Flags().StringSliceVar(&f.stores, "store", nil, "pebble store directory to merge, repeatable")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	if err := a.v.BindPFlag("output", cmd.Flags().Lookup("output")); err != nil {
		panic(err)
	}
	return cmd
}

// session builds a session and the merge inputs for paths and stores.
// The returned cleanup closes the session, releases the inputs Start did
// not take and then closes the stores.
func (a *app) session(ctx context.Context, stdin io.Reader, paths, stores []string, stats monitoring.Stats) (*merger.Session, []source.Input, func(), error) {
	def, err := a.keyDef()
	if err != nil {
		return nil, nil, nil, err
	}
	order, err := a.cfg.OrderSign()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []merger.Option{
		merger.WithLogger(a.logger),
		merger.WithMaxSources(a.cfg.MaxSources),
	}
	if stats != nil {
		opts = append(opts, merger.WithStats(stats))
	}
	s, err := merger.NewWithDef(def, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		inputs []source.Input
		opened []*pebble.Store
	)
	cleanup := func() {
		s.Close()
		source.Release(inputs)
		for _, st := range opened {
			if err := st.Close(); err != nil {
				a.logger.Error("failed to close store", "error", err)
			}
		}
	}

	inputs, err = loadInputs(ctx, def, order, paths, stdin)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	for _, dir := range stores {
		st, err := a.openStore(def, dir)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		opened = append(opened, st)
		in, err := st.Source(order)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		inputs = append(inputs, in)
	}
	return s, inputs, cleanup, nil
}

func (a *app) openStore(def *keydef.Def, dir string) (*pebble.Store, error) {
	return pebble.Open(def, pebble.Options{
		Path:         dir,
		CacheSize:    a.cfg.Store.CacheSize,
		MaxOpenFiles: a.cfg.Store.MaxOpenFiles,
	})
}

func (a *app) runMerge(ctx context.Context, stdin io.Reader, paths []string, f mergeFlags) error {
	if len(paths) == 0 && len(f.stores) == 0 {
		return errors.New("merge: no inputs")
	}

	var (
		reg   *prometheus.Registry
		stats monitoring.Stats
	)
	if f.metricsFile != "" {
		reg = prometheus.NewRegistry()
		ps, err := monitoring.NewPrometheusStats(reg)
		if err != nil {
			return err
		}
		stats = ps
	}

	s, inputs, cleanup, err := a.session(ctx, stdin, paths, f.stores, stats)
	if err != nil {
		return err
	}
	defer cleanup()

	order, _ := a.cfg.OrderSign()
	if err := s.Start(ctx, inputs, order); err != nil {
		return err
	}

	w, err := createFile(f.out, a.out)
	if err != nil {
		return err
	}
	var n int64
	if a.cfg.Output == "envelope" {
		n, err = compactor.Drain(ctx, w, s)
	} else {
		n, err = writeJSONLines(ctx, w, s)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	a.logger.Debug("merge finished", "session", s.ID(), "sources", s.Sources(), "bytes", n)

	if reg != nil {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("merge: failed to write metrics: %w", err)
		}
	}
	return nil
}

func writeJSONLines(ctx context.Context, w io.Writer, s *merger.Session) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for t, err := range s.All(ctx) {
		if err != nil {
			return n, err
		}
		b, err := t.MarshalJSON()
		if err != nil {
			return n, err
		}
		bw.Write(b)
		bw.WriteByte('\n')
		n += int64(len(b)) + 1
	}
	return n, bw.Flush()
}
