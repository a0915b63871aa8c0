package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/davidvella/merger/keydef"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "MERGECAT"

var ErrInvalid = errors.New("config: invalid configuration")

// Config is the mergecat configuration.
type Config struct {
	// Key is the compact key form, e.g. "1:unsigned,3:string?".
	Key string `mapstructure:"key"`
	// KeyParts is the structured key form; it wins over Key.
	KeyParts   []keydef.PartSpec `mapstructure:"key_parts"`
	Order      string            `mapstructure:"order"`
	MaxSources int               `mapstructure:"max_sources"`
	Output     string            `mapstructure:"output"`
	Log        LogConfig         `mapstructure:"log"`
	Store      StoreConfig       `mapstructure:"store"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	CacheSize    int64 `mapstructure:"cache_size"`
	MaxOpenFiles int   `mapstructure:"max_open_files"`
}

// Load reads the optional config file at path and then MERGECAT_*
// environment variables, which override the file. Nested keys use an
// underscore in the environment: log.level is MERGECAT_LOG_LEVEL.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller supplied viper instance, typically one with
// command line flags already bound.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	v.SetDefault("key", "")
	v.SetDefault("order", "asc")
	v.SetDefault("max_sources", 0)
	v.SetDefault("output", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.cache_size", 8<<20)
	v.SetDefault("store.max_open_files", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that do not depend on the command being run.
func (c *Config) Validate() error {
	if _, err := c.OrderSign(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q, want text or json", ErrInvalid, c.Log.Format)
	}
	switch c.Output {
	case "", "json", "envelope":
	default:
		return fmt.Errorf("%w: output %q, want json or envelope", ErrInvalid, c.Output)
	}
	if c.MaxSources < 0 {
		return fmt.Errorf("%w: max_sources must not be negative", ErrInvalid)
	}
	return nil
}

// OrderSign returns 1 for an ascending and -1 for a descending merge.
func (c *Config) OrderSign() (int, error) {
	switch strings.ToLower(c.Order) {
	case "", "asc", "ascending":
		return 1, nil
	case "desc", "descending":
		return -1, nil
	default:
		return 0, fmt.Errorf("%w: order %q, want asc or desc", ErrInvalid, c.Order)
	}
}

// Parts returns the key parts, from KeyParts when set and parsed from Key
// otherwise.
func (c *Config) Parts() ([]keydef.PartSpec, error) {
	if len(c.KeyParts) > 0 {
		return c.KeyParts, nil
	}
	if c.Key == "" {
		return nil, fmt.Errorf("%w: no key parts configured", ErrInvalid)
	}
	return ParseKey(c.Key)
}

// ParseKey parses the compact key form: comma separated fieldno:type pairs,
// with a trailing '?' on the type marking a nullable part.
func ParseKey(s string) ([]keydef.PartSpec, error) {
	var parts []keydef.PartSpec
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		no, typ, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("%w: key part %q, want fieldno:type", ErrInvalid, field)
		}
		n, err := strconv.Atoi(strings.TrimSpace(no))
		if err != nil {
			return nil, fmt.Errorf("%w: key part %q: bad field number", ErrInvalid, field)
		}
		typ = strings.TrimSpace(typ)
		nullable := strings.HasSuffix(typ, "?")
		parts = append(parts, keydef.PartSpec{
			FieldNo:    n,
			Type:       strings.TrimSuffix(typ, "?"),
			IsNullable: nullable,
		})
	}
	return parts, nil
}

// SlogLevel parses the configured level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Level)
	}
	return l, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
