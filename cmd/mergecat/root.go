package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/davidvella/merger/config"
	"github.com/davidvella/merger/keydef"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	var configPath string
	root := &cobra.Command{
		Use:           "mergecat",
		Short:         "Merge sorted tuple files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(configPath)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("key", "", `key parts, e.g. "1:unsigned,3:string?"`)
	flags.String("order", "asc", "merge order: asc or desc")
	flags.Int("max-sources", 0, "maximum number of inputs, 0 for no limit")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "text", "log format: text or json")

	for key, flag := range map[string]string{
		"key":         "key",
		"order":       "order",
		"max_sources": "max-sources",
		"log.level":   "log-level",
		"log.format":  "log-format",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newMergeCmd(a),
		newPeekCmd(a),
		newPackCmd(a),
	)
	return root
}

func (a *app) load(path string) error {
	cfg, err := config.LoadWith(a.v, path)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) keyDef() (*keydef.Def, error) {
	parts, err := a.cfg.Parts()
	if err != nil {
		return nil, err
	}
	def, err := keydef.FromSpecs(parts)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	return def, nil
}
