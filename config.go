package hxel

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file-level configuration for hosts that construct many
// elements, such as the hxel CLI.
//
//	log:
//	  level: debug
//	  format: json
//	lookup_cache: render
//	definition_gate: true
//	snapshot_key: change-me
//	metrics: true
type Config struct {
	Log            LogConfig `yaml:"log"`
	LookupCache    string    `yaml:"lookup_cache"`
	DefinitionGate *bool     `yaml:"definition_gate"`
	SnapshotKey    string    `yaml:"snapshot_key"`
	Metrics        bool      `yaml:"metrics"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	gate := true
	return Config{
		Log:            LogConfig{Level: "info", Format: "text"},
		LookupCache:    LookupInvalidateOnRender.String(),
		DefinitionGate: &gate,
	}
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("hxel: parse config: %w", err)
	}
	if cfg.DefinitionGate == nil {
		gate := true
		cfg.DefinitionGate = &gate
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("hxel: read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("hxel: unknown log format %q", c.Log.Format)
	}
	if _, err := c.LookupPolicy(); err != nil {
		return err
	}
	return nil
}

// LookupPolicy maps LookupCache to a policy.
func (c Config) LookupPolicy() (LookupPolicy, error) {
	switch strings.ToLower(c.LookupCache) {
	case "", "render":
		return LookupInvalidateOnRender, nil
	case "retain":
		return LookupRetain, nil
	}
	return 0, fmt.Errorf("hxel: unknown lookup_cache %q", c.LookupCache)
}

// Logger builds a logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Options converts the configuration into element options. logger and
// metrics may be nil.
func (c Config) Options(logger *slog.Logger, metrics *Metrics) []Option {
	var opts []Option
	if policy, err := c.LookupPolicy(); err == nil {
		opts = append(opts, WithLookupPolicy(policy))
	}
	if c.DefinitionGate != nil && !*c.DefinitionGate {
		opts = append(opts, WithoutDefinitionGate())
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if metrics != nil {
		opts = append(opts, WithMetrics(metrics))
	}
	return opts
}

// Encoder builds the snapshot encoder from SnapshotKey.
func (c Config) Encoder() (*Encoder, error) {
	if c.SnapshotKey == "" {
		return nil, fmt.Errorf("hxel: snapshot_key is not set")
	}
	return NewEncoder([]byte(c.SnapshotKey))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("hxel: unknown log level %q", s)
}
