package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/patternkit/internal/config/loader"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "PATTERNKIT_"

// DefaultPath is the config file read when no path is given.
const DefaultPath = "patternkit.toml"

// Config holds all settings.
type Config struct {
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Script  ScriptConfig  `toml:"script"`
}

// HistoryConfig configures the undo history.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
// The endpoint refuses to start unless Enabled is set.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// ScriptConfig configures scenario and Lua execution.
type ScriptConfig struct {
	WatchDebounce Duration `toml:"watch_debounce"`
	LuaCallLimit  int      `toml:"lua_call_limit"`
}

// Duration is a time.Duration written as a string such as "200ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		History: HistoryConfig{MaxEntries: 1000},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: false, Listen: ":9464"},
		Script: ScriptConfig{
			WatchDebounce: Duration{200 * time.Millisecond},
			LuaCallLimit:  100000,
		},
	}
}

// Paths returns every setting path, used to look up environment overrides.
func Paths() []string {
	return []string{
		"history.max_entries",
		"log.level",
		"log.format",
		"metrics.enabled",
		"metrics.listen",
		"script.watch_debounce",
		"script.lua_call_limit",
	}
}

// Load reads defaults, the TOML file at path and the process environment,
// then validates the result. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	return LoadWith(loader.DefaultFS(), path, os.LookupEnv)
}

// LoadWith is Load with an explicit file system and environment.
func LoadWith(fsys loader.FileSystem, path string, lookup loader.LookupFunc) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	layers := []struct {
		source string
		loader loader.Loader
	}{
		{path, loader.NewTOMLLoaderWithFS(fsys, path)},
		{"environment", loader.NewEnvLoader(EnvPrefix, Paths(), lookup)},
	}

	cfg := Default()
	for _, layer := range layers {
		m, err := layer.loader.Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(layer.source, m); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes decodes TOML data over the defaults and validates it.
// The environment is not consulted.
func LoadFromBytes(data []byte) (*Config, error) {
	m, err := loader.Parse("<bytes>", data)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.apply("<bytes>", m); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PATTERNKIT_<SECTION>_<KEY> variables.
func (c *Config) ApplyEnv(lookup loader.LookupFunc) error {
	env, err := loader.NewEnvLoader(EnvPrefix, Paths(), lookup).Load()
	if err != nil {
		return err
	}
	return c.apply("environment", env)
}

// apply decodes a raw settings map over c. Unknown keys are rejected.
func (c *Config) apply(source string, m map[string]any) error {
	if len(m) == 0 {
		return nil
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding %s settings: %w", source, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%s: unknown settings: %s", source, strict.String())
		}
		return fmt.Errorf("decoding %s settings: %w", source, err)
	}
	return nil
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if c.History.MaxEntries <= 0 {
		errs = append(errs, &ValidationError{
			Path:    "history.max_entries",
			Message: "must be positive",
			Value:   c.History.MaxEntries,
		})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: "must be one of debug, info, warn, error",
			Value:   c.Log.Level,
		})
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, &ValidationError{
			Path:    "log.format",
			Message: "must be text or json",
			Value:   c.Log.Format,
		})
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, &ValidationError{
			Path:    "metrics.listen",
			Message: "required when metrics are enabled",
			Value:   c.Metrics.Listen,
		})
	}

	if c.Script.WatchDebounce.Duration < 0 {
		errs = append(errs, &ValidationError{
			Path:    "script.watch_debounce",
			Message: "must not be negative",
			Value:   c.Script.WatchDebounce,
		})
	}

	if c.Script.LuaCallLimit < 0 {
		errs = append(errs, &ValidationError{
			Path:    "script.lua_call_limit",
			Message: "must not be negative (0 disables the limit)",
			Value:   c.Script.LuaCallLimit,
		})
	}

	return errors.Join(errs...)
}
