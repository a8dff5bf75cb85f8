package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/metrics"
	"github.com/dshills/patternkit/internal/player"
)

// ErrExpectation is wrapped by failed expect_* steps.
var ErrExpectation = errors.New("expectation failed")

// Runner replays scenarios.
type Runner struct {
	// Logger receives structured step logs. Nil discards them.
	Logger *slog.Logger

	// Out receives one narration line per step. Nil discards them.
	Out io.Writer

	// Metrics, when set, records edits and player presses.
	Metrics *metrics.Metrics

	// MaxUndoEntries bounds the engine history; 0 uses the engine default.
	MaxUndoEntries int
}

// Result is the state after a run.
type Result struct {
	Name string
	// Steps is the number of steps that completed.
	Steps  int
	Engine *engine.Engine
	Player *player.Player
}

// Text returns the final buffer content.
func (r *Result) Text() string {
	return r.Engine.Text()
}

// State returns the final player state name.
func (r *Result) State() string {
	return r.Player.State().Name()
}

type run struct {
	engine *engine.Engine
	player *player.Player

	// noop is true when the previous step changed nothing.
	noop bool
}

// Run executes s against a fresh engine and player.
// The returned Result is non-nil even when a step fails.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("script", s.Name))

	out := r.Out
	if out == nil {
		out = io.Discard
	}

	engineOpts := []engine.Option{
		engine.WithContent(s.Text),
		engine.WithLogger(logger),
	}
	if r.MaxUndoEntries > 0 {
		engineOpts = append(engineOpts, engine.WithMaxUndoEntries(r.MaxUndoEntries))
	}
	if r.Metrics != nil {
		engineOpts = append(engineOpts, engine.WithRecorder(r.Metrics))
	}

	playerOpts := []player.Option{player.WithLogger(logger)}
	if initial, ok := player.StateByName(s.State); ok {
		playerOpts = append(playerOpts, player.WithInitialState(initial))
	}

	st := &run{
		engine: engine.New(engineOpts...),
		player: player.New(playerOpts...),
	}
	if r.Metrics != nil {
		defer r.Metrics.ObservePlayer(st.player)()
	}

	result := &Result{Name: s.Name, Engine: st.engine, Player: st.player}

	logger.Info("script started", slog.Int("steps", len(s.Steps)))
	if s.Name != "" {
		fmt.Fprintf(out, "== %s ==\n", s.Name)
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("script %q stopped before step %d: %w", s.Name, i+1, err)
		}

		line, err := st.apply(step)
		if err != nil {
			logger.Warn("step failed",
				slog.Int("step", i+1),
				slog.String("op", step.Op),
				slog.Any("error", err))
			return result, &StepError{Index: i, Op: step.Op, Line: step.Line, Err: err}
		}

		fmt.Fprintf(out, "%3d. %-12s %s\n", i+1, step.Op, line)
		result.Steps++
	}

	logger.Info("script finished",
		slog.Int("steps", result.Steps),
		slog.String("state", st.player.State().Name()))
	return result, nil
}

// apply executes one step and returns its narration.
func (st *run) apply(step Step) (string, error) {
	e := st.engine

	switch step.Op {
	case OpInsert:
		st.noop = false
		if err := e.Insert(step.Text, *step.At); err != nil {
			return "", err
		}
		return fmt.Sprintf("%q at %d -> %q", step.Text, *step.At, e.Text()), nil

	case OpDelete:
		st.noop = false
		removed, err := e.Delete(*step.Start, *step.End)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d,%d) removed %q -> %q", *step.Start, *step.End, removed, e.Text()), nil

	case OpUndo, OpRedo:
		apply := e.Undo
		if step.Op == OpRedo {
			apply = e.Redo
		}
		ok, err := apply()
		if err != nil {
			return "", err
		}
		st.noop = !ok
		if !ok {
			return "nothing to " + step.Op, nil
		}
		return fmt.Sprintf("-> %q", e.Text()), nil

	case OpGroup:
		st.noop = false
		e.BeginGroup(step.Name)
		return fmt.Sprintf("begin %q", step.Name), nil

	case OpEndGroup:
		st.noop = false
		e.EndGroup()
		return "end group", nil

	case OpSnapshot:
		st.noop = false
		id := e.CreateSnapshot(step.Name)
		return fmt.Sprintf("%q saved (%s)", step.Name, id), nil

	case OpRestore:
		st.noop = false
		if err := e.RestoreSnapshot(step.Name); err != nil {
			return "", err
		}
		return fmt.Sprintf("%q -> %q", step.Name, e.Text()), nil

	case OpCheckpoint:
		st.noop = false
		e.Checkpoint(step.Name)
		_, pos := e.Checkpoints()
		return fmt.Sprintf("#%d %q", pos, e.Text()), nil

	case OpBack, OpForward:
		travel := e.Back
		if step.Op == OpForward {
			travel = e.Forward
		}
		ok, err := travel()
		if err != nil {
			return "", err
		}
		st.noop = !ok
		if !ok {
			return "no checkpoint to go " + step.Op + " to", nil
		}
		_, pos := e.Checkpoints()
		return fmt.Sprintf("#%d %q", pos, e.Text()), nil

	case OpPlay, OpPause, OpStop:
		action, err := player.ParseAction(step.Op)
		if err != nil {
			return "", err
		}
		t, err := st.player.Press(action)
		if err != nil {
			return "", err
		}
		st.noop = !t.Changed()
		return t.String(), nil

	case OpExpectText:
		if got := e.Text(); got != step.Want {
			return "", fmt.Errorf("%w: text = %q, want %q", ErrExpectation, got, step.Want)
		}
		return fmt.Sprintf("ok %q", step.Want), nil

	case OpExpectState:
		if got := st.player.State().Name(); got != step.Want {
			return "", fmt.Errorf("%w: state = %s, want %s", ErrExpectation, got, step.Want)
		}
		return "ok " + step.Want, nil

	case OpExpectNoop:
		if !st.noop {
			return "", fmt.Errorf("%w: previous step changed something", ErrExpectation)
		}
		return "ok", nil

	default:
		return "", fmt.Errorf("%w: unknown op %q", ErrInvalidScript, step.Op)
	}
}
