package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidvella/merger/tuple"
	"github.com/spf13/cobra"
)

func newPeekCmd(a *app) *cobra.Command {
	var (
		probe  string
		stores []string
	)
	cmd := &cobra.Command{
		Use:   "peek --probe JSON [files...]",
		Short: "Compare the first merged tuple with a key",
		Long: `Compare the first tuple a merge would produce with a key given as a JSON
array of key part values. Prints -1, 0 or 1 in merge order, or "exhausted"
when the inputs are empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parts []any
			dec := json.NewDecoder(strings.NewReader(probe))
			dec.UseNumber()
			if err := dec.Decode(&parts); err != nil {
				return fmt.Errorf("peek: probe must be a JSON array: %w", err)
			}
			key, err := tuple.EncodeKey(parts...)
			if err != nil {
				return fmt.Errorf("peek: %w", err)
			}

			ctx := cmd.Context()
			s, inputs, cleanup, err := a.session(ctx, cmd.InOrStdin(), args, stores, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			order, _ := a.cfg.OrderSign()
			if err := s.Start(ctx, inputs, order); err != nil {
				return err
			}
			c, ok, err := s.Peek(key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "exhausted")
				return nil
			}
			fmt.Fprintln(a.out, c)
			return nil
		},
	}
	cmd.Flags().StringVar(&probe, "probe", "", "key to compare against, as a JSON array")
	cmd.Flags().StringSliceVar(&stores, "store", nil, "pebble store directory to merge, repeatable")
	_ = cmd.MarkFlagRequired("probe")
	return cmd
}
