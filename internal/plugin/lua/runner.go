package lua

import (
	"context"
	"io"
	"log/slog"

	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/metrics"
	"github.com/dshills/patternkit/internal/player"
)

// Runner executes Lua scripts against a fresh engine and player.
type Runner struct {
	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// Out receives print output. Nil discards it.
	Out io.Writer

	// Metrics, when set, records edits and player presses.
	Metrics *metrics.Metrics

	// Content is the initial buffer text.
	Content string

	// CallLimit bounds host calls per run; 0 uses DefaultCallLimit,
	// a negative value disables the limit.
	CallLimit int64
}

// Result is the state after a run.
type Result struct {
	Engine *engine.Engine
	Player *player.Player
}

// Run executes Lua source code.
func (r *Runner) Run(ctx context.Context, source string) (*Result, error) {
	return r.run(ctx, "<string>", func(s *State) error {
		return s.DoString(ctx, "<string>", source)
	})
}

// RunFile executes the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (*Result, error) {
	return r.run(ctx, path, func(s *State) error {
		return s.DoFile(ctx, path)
	})
}

func (r *Runner) run(ctx context.Context, source string, exec func(*State) error) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("lua", source))

	out := r.Out
	if out == nil {
		out = io.Discard
	}

	engineOpts := []engine.Option{engine.WithContent(r.Content), engine.WithLogger(logger)}
	if r.Metrics != nil {
		engineOpts = append(engineOpts, engine.WithRecorder(r.Metrics))
	}
	res := &Result{
		Engine: engine.New(engineOpts...),
		Player: player.New(player.WithLogger(logger)),
	}
	if r.Metrics != nil {
		defer r.Metrics.ObservePlayer(res.Player)()
	}

	limit := r.CallLimit
	switch {
	case limit == 0:
		limit = DefaultCallLimit
	case limit < 0:
		limit = 0
	}

	s := NewState(WithCallLimit(limit))
	defer s.Close()

	s.BindEditor(res.Engine)
	s.BindPlayer(res.Player)
	s.BindPrint(out)

	logger.Info("lua script started")
	if err := exec(s); err != nil {
		logger.Warn("lua script failed", slog.Any("error", err))
		return res, err
	}
	logger.Info("lua script finished",
		slog.Int64("calls", s.Sandbox().CallCount()),
		slog.String("state", res.Player.State().Name()))
	return res, nil
}
