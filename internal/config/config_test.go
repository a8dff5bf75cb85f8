package config

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/patternkit/internal/config/loader"
)

func env(vars map[string]string) loader.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.History.MaxEntries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":9464", cfg.Metrics.Listen)
	assert.Equal(t, 200*time.Millisecond, cfg.Script.WatchDebounce.Duration)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWith(fstest.MapFS{}, "patternkit.toml", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	fsys := fstest.MapFS{
		"patternkit.toml": {Data: []byte(`
[history]
max_entries = 50

[log]
level = "debug"

[script]
watch_debounce = "1s"
`)},
	}

	cfg, err := LoadWith(fsys, "patternkit.toml", env(map[string]string{
		"PATTERNKIT_LOG_FORMAT":          "json",
		"PATTERNKIT_METRICS_ENABLED":     "true",
		"PATTERNKIT_HISTORY_MAX_ENTRIES": "75",
	}))
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.History.MaxEntries, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9464", cfg.Metrics.Listen, "unset keys keep defaults")
	assert.Equal(t, time.Second, cfg.Script.WatchDebounce.Duration)
}

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("[script]\nlua_call_limit = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Script.LuaCallLimit)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadParseError(t *testing.T) {
	_, err := LoadFromBytes([]byte("[log\nlevel = "))
	require.Error(t, err)

	var perr *loader.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "<bytes>", perr.Path)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := LoadFromBytes([]byte("[history]\nmax_entriez = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown settings")
}

func TestApplyEnvTypeMismatch(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{"PATTERNKIT_HISTORY_MAX_ENTRIES": "lots"}))
	require.Error(t, err)
}

func TestApplyEnvDuration(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{"PATTERNKIT_SCRIPT_WATCH_DEBOUNCE": "50ms"})))
	assert.Equal(t, 50*time.Millisecond, cfg.Script.WatchDebounce.Duration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"max entries", func(c *Config) { c.History.MaxEntries = 0 }, "history.max_entries"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" }, "metrics.listen"},
		{"debounce", func(c *Config) { c.Script.WatchDebounce.Duration = -time.Second }, "script.watch_debounce"},
		{"lua limit", func(c *Config) { c.Script.LuaCallLimit = -1 }, "script.lua_call_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "log.format")
}
