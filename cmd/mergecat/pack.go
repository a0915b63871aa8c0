package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/merger/recordio"
	"github.com/davidvella/merger/tuple"
	"github.com/spf13/cobra"
)

func newPackCmd(a *app) *cobra.Command {
	var (
		out   string
		store string
	)
	cmd := &cobra.Command{
		Use:   "pack [files...]",
		Short: "Sort JSON lines into an envelope or a pebble store",
		Long: `Sort JSON lines input by the key and write it as one envelope, ready to be
used as a merge input. With --store the tuples are added to a pebble store
instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			return a.runPack(cmd.Context(), cmd.InOrStdin(), args, out, store)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&store, "store", "", "pebble store directory to add the tuples to")
	return cmd
}

func (a *app) runPack(ctx context.Context, stdin io.Reader, paths []string, out, store string) error {
	def, err := a.keyDef()
	if err != nil {
		return err
	}
	order, err := a.cfg.OrderSign()
	if err != nil {
		return err
	}

	if n := countStdin(paths); n > 1 {
		return fmt.Errorf("pack: %w, got %d", errStdinTwice, n)
	}

	var tuples []*tuple.Tuple
	for _, path := range paths {
		data, err := readFile(path, stdin)
		if err != nil {
			return err
		}
		ts, err := parseJSONLines(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		tuples = append(tuples, ts...)
	}

	if store != "" {
		st, err := a.openStore(def, store)
		if err != nil {
			return err
		}
		if err := st.Put(ctx, tuples...); err != nil {
			return errors.Join(err, st.Close())
		}
		a.logger.Info("packed tuples into store", "store", store, "tuples", len(tuples))
		return st.Close()
	}

	tree, err := sortTuples(def, tuples)
	if err != nil {
		return err
	}

	w, err := createFile(out, a.out)
	if err != nil {
		return err
	}
	rw := recordio.NewWriter(w)
	for t := range tree.All(order) {
		if err := rw.Write(t); err != nil {
			return errors.Join(err, w.Close())
		}
	}
	n, err := rw.Close()
	if err != nil {
		return errors.Join(err, w.Close())
	}
	a.logger.Info("packed tuples", "tuples", tree.Len(), "bytes", n)
	return w.Close()
}
