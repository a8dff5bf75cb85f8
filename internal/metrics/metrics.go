// Package metrics exposes Prometheus counters for edit commands and player
// transitions.
//
// # Metrics
//
//   - patternkit_commands_total{kind,op}: commands executed, undone or redone
//   - patternkit_noop_total{op}: undo/redo requests with nothing to do
//   - patternkit_command_errors_total{op}: commands that returned an error
//   - patternkit_player_transitions_total{from,to}: player state changes
//   - patternkit_player_noops_total{state,action}: presses that changed nothing
//
// Each Metrics value owns its registry, so tests and multiple engines never
// collide on registration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/engine/history"
	"github.com/dshills/patternkit/internal/player"
)

// Namespace for all metrics
const metricsNamespace = "patternkit"

// Metrics holds the Prometheus collectors.
// All operations are thread-safe.
type Metrics struct {
	registry *prometheus.Registry

	// CommandsTotal counts applied commands.
	// Labels: kind (insert, delete, compound), op (execute, undo, redo)
	CommandsTotal *prometheus.CounterVec

	// NoopTotal counts undo/redo calls on an empty stack.
	// Labels: op (undo, redo)
	NoopTotal *prometheus.CounterVec

	// CommandErrorsTotal counts failed commands.
	// Labels: op (execute, undo, redo)
	CommandErrorsTotal *prometheus.CounterVec

	// PlayerTransitionsTotal counts player state changes.
	// Labels: from, to
	PlayerTransitionsTotal *prometheus.CounterVec

	// PlayerNoopsTotal counts presses that left the state unchanged.
	// Labels: state, action
	PlayerNoopsTotal *prometheus.CounterVec
}

// New creates metrics registered on a fresh registry.
// When withRuntime is true, Go runtime and process collectors are added;
// the application passes metrics.enabled, so a disabled endpoint skips them.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "commands_total",
				Help:      "Edit commands applied, by command kind and operation.",
			},
			[]string{"kind", "op"},
		),
		NoopTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "noop_total",
				Help:      "Undo or redo requests with nothing to do.",
			},
			[]string{"op"},
		),
		CommandErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "command_errors_total",
				Help:      "Edit commands that returned an error.",
			},
			[]string{"op"},
		),
		PlayerTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "player_transitions_total",
				Help:      "Player state changes.",
			},
			[]string{"from", "to"},
		),
		PlayerNoopsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "player_noops_total",
				Help:      "Player button presses that did not change state.",
			},
			[]string{"state", "action"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// =============================================================================
// engine.Recorder
// =============================================================================

// CommandApplied implements engine.Recorder.
func (m *Metrics) CommandApplied(op string, kind history.Kind) {
	m.CommandsTotal.WithLabelValues(kind.String(), op).Inc()
}

// Noop implements engine.Recorder.
func (m *Metrics) Noop(op string) {
	m.NoopTotal.WithLabelValues(op).Inc()
}

// CommandFailed implements engine.Recorder.
func (m *Metrics) CommandFailed(op string) {
	m.CommandErrorsTotal.WithLabelValues(op).Inc()
}

var _ engine.Recorder = (*Metrics)(nil)

// =============================================================================
// Player
// =============================================================================

// RecordTransition counts one player press.
func (m *Metrics) RecordTransition(t player.Transition) {
	if t.Changed() {
		m.PlayerTransitionsTotal.WithLabelValues(t.From.Name(), t.To.Name()).Inc()
		return
	}
	m.PlayerNoopsTotal.WithLabelValues(t.From.Name(), t.Action.String()).Inc()
}

// ObservePlayer records every press on p. The returned function stops it.
func (m *Metrics) ObservePlayer(p *player.Player) func() {
	return p.OnPress(m.RecordTransition)
}

// =============================================================================
// Nop
// =============================================================================

// Nop is an engine.Recorder that records nothing.
type Nop struct{}

func (Nop) CommandApplied(string, history.Kind) {}
func (Nop) Noop(string)                         {}
func (Nop) CommandFailed(string)                {}

var _ engine.Recorder = Nop{}
