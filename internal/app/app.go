// Package app wires configuration, logging and metrics into the editor and
// player runners used by the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/patternkit/internal/config"
	"github.com/dshills/patternkit/internal/logging"
	"github.com/dshills/patternkit/internal/metrics"
	"github.com/dshills/patternkit/internal/plugin/lua"
	"github.com/dshills/patternkit/internal/script"
	"github.com/dshills/patternkit/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	// Empty means config.DefaultPath.
	ConfigPath string

	// LogLevel overrides log.level when set.
	LogLevel string

	// Out receives narration and script output. Defaults to os.Stdout.
	Out io.Writer

	// LogOutput receives structured logs. Defaults to os.Stderr.
	LogOutput io.Writer

	// Config, when set, is used instead of loading ConfigPath.
	Config *config.Config
}

// Application holds the shared services for one command invocation.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	out     io.Writer
}

// New loads configuration and builds the logger and metrics.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
		}
		cfg = loaded
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
		}
	}

	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(cfg.Metrics.Enabled),
		out:     out,
	}, nil
}

// Config returns the effective configuration.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Metrics returns the metrics registry shared by every run.
func (a *Application) Metrics() *metrics.Metrics { return a.metrics }

// ScriptRunner returns a scenario runner bound to the application services.
func (a *Application) ScriptRunner() *script.Runner {
	return &script.Runner{
		Logger:         a.logger,
		Out:            a.out,
		Metrics:        a.metrics,
		MaxUndoEntries: a.config.History.MaxEntries,
	}
}

// LuaRunner returns a Lua runner bound to the application services.
func (a *Application) LuaRunner() *lua.Runner {
	// In the config 0 disables the limit; for the runner 0 means the default.
	limit := int64(a.config.Script.LuaCallLimit)
	if limit == 0 {
		limit = -1
	}
	return &lua.Runner{
		Logger:    a.logger,
		Out:       a.out,
		Metrics:   a.metrics,
		CallLimit: limit,
	}
}

// RunDemos narrates every built-in scenario.
func (a *Application) RunDemos(ctx context.Context) error {
	demos, err := script.Demos()
	if err != nil {
		return err
	}

	runner := a.ScriptRunner()
	for i, s := range demos {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		if _, err := runner.Run(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// RunFile runs a YAML scenario or a Lua script, chosen by extension.
func (a *Application) RunFile(ctx context.Context, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err := script.LoadFile(path)
		if err != nil {
			return &FileError{Op: "run", Path: path, Err: err}
		}
		if _, err := a.ScriptRunner().Run(ctx, s); err != nil {
			return &FileError{Op: "run", Path: path, Err: err}
		}
		return nil

	case ".lua":
		res, err := a.LuaRunner().RunFile(ctx, path)
		if err != nil {
			return &FileError{Op: "run", Path: path, Err: err}
		}
		fmt.Fprintf(a.out, "text: %q\nstate: %s\n", res.Engine.Text(), res.Player.State().Name())
		return nil

	default:
		return &FileError{Op: "run", Path: path, Err: ErrUnsupportedFile}
	}
}

// Watch runs path now and again on every change until ctx is done.
// Failed runs are logged and watching continues.
func (a *Application) Watch(ctx context.Context, path string) error {
	w, err := watcher.New(path, a.config.Script.WatchDebounce.Duration, watcher.WithLogger(a.logger))
	if err != nil {
		return &FileError{Op: "watch", Path: path, Err: err}
	}

	a.logger.Info("watching", slog.String("path", w.Path()))
	return w.Run(ctx, func(ctx context.Context) error {
		return a.RunFile(ctx, w.Path())
	})
}

// ServeMetrics serves /metrics on addr until ctx is done.
// An empty addr uses metrics.listen from the config.
// Returns ErrMetricsDisabled unless metrics.enabled is set.
func (a *Application) ServeMetrics(ctx context.Context, addr string) error {
	if !a.config.Metrics.Enabled {
		return ErrMetricsDisabled
	}
	if addr == "" {
		addr = a.config.Metrics.Listen
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return a.serveMetrics(ctx, ln)
}

func (a *Application) serveMetrics(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	a.logger.Info("metrics endpoint listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
