package player

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Transition describes the outcome of one button press.
type Transition struct {
	Action  Action
	From    State
	To      State
	Message string
}

// Changed returns true if the press moved the player to another state.
func (t Transition) Changed() bool {
	return t.From.Name() != t.To.Name()
}

// String returns a one-line summary of the transition.
func (t Transition) String() string {
	if t.Changed() {
		return fmt.Sprintf("%s: %s -> %s (%s)", t.Action, t.From.Name(), t.To.Name(), t.Message)
	}
	return fmt.Sprintf("%s: %s unchanged (%s)", t.Action, t.From.Name(), t.Message)
}

// ChangeCallback is called after the player changes state.
type ChangeCallback func(Transition)

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger used for transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInitialState sets the state the player starts in.
func WithInitialState(s State) Option {
	return func(p *Player) {
		if s != nil {
			p.state = s
		}
	}
}

// Player is the context that delegates button presses to its current state.
// All methods are safe for concurrent use.
type Player struct {
	mu sync.Mutex

	state    State
	previous State

	// pending is set by transitionTo while a handler runs.
	pending State

	callbacks map[uint64]subscription
	nextID    uint64

	logger *slog.Logger
}

// New creates a player in the Stopped state.
func New(opts ...Option) *Player {
	p := &Player{
		state:     Stopped{},
		callbacks: make(map[uint64]subscription),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Previous returns the state before the last transition, or nil.
func (p *Player) Previous() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previous
}

// PressPlay presses the play button.
func (p *Player) PressPlay() Transition {
	return p.press(ActionPlay)
}

// PressPause presses the pause button.
func (p *Player) PressPause() Transition {
	return p.press(ActionPause)
}

// PressStop presses the stop button.
func (p *Player) PressStop() Transition {
	return p.press(ActionStop)
}

// Press presses the button for a.
func (p *Player) Press(a Action) (Transition, error) {
	switch a {
	case ActionPlay, ActionPause, ActionStop:
		return p.press(a), nil
	default:
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownAction, a)
	}
}

func (p *Player) press(a Action) Transition {
	p.mu.Lock()

	from := p.state
	p.pending = nil

	var msg string
	switch a {
	case ActionPlay:
		msg = from.Play(p)
	case ActionPause:
		msg = from.Pause(p)
	case ActionStop:
		msg = from.Stop(p)
	}

	to := from
	if p.pending != nil {
		to = p.pending
		p.pending = nil
	}
	t := Transition{Action: a, From: from, To: to, Message: msg}

	if t.Changed() {
		p.previous = from
		p.state = to
	}
	callbacks := p.callbacksLocked(!t.Changed())
	p.mu.Unlock()

	if t.Changed() {
		p.logger.Info("player state changed",
			slog.String("action", a.String()),
			slog.String("from", from.Name()),
			slog.String("to", to.Name()),
			slog.String("message", msg))
	} else {
		p.logger.Debug("player action ignored",
			slog.String("action", a.String()),
			slog.String("state", from.Name()),
			slog.String("message", msg))
	}

	for _, cb := range callbacks {
		cb(t)
	}
	return t
}

// transitionTo records the state a handler moves to.
// Called by State handlers while the player lock is held.
func (p *Player) transitionTo(s State) {
	p.pending = s
}

// SetState replaces the current state unconditionally.
// A nil state is ignored. Observers are notified if the state changed.
func (p *Player) SetState(s State) {
	if s == nil {
		return
	}

	p.mu.Lock()
	from := p.state
	if from.Name() == s.Name() {
		p.mu.Unlock()
		return
	}
	p.previous = from
	p.state = s
	callbacks := p.callbacksLocked(false)
	p.mu.Unlock()

	p.logger.Info("player state set",
		slog.String("from", from.Name()),
		slog.String("to", s.Name()))

	t := Transition{Action: ActionSet, From: from, To: s, Message: "state set"}
	for _, cb := range callbacks {
		cb(t)
	}
}

type subscription struct {
	cb ChangeCallback
	// noops is true for OnPress subscribers.
	noops bool
}

// OnChange registers a callback for state changes.
// The returned function removes the callback.
func (p *Player) OnChange(cb ChangeCallback) func() {
	return p.subscribe(cb, false)
}

// OnPress registers a callback for every button press, including presses
// that leave the state unchanged.
func (p *Player) OnPress(cb ChangeCallback) func() {
	return p.subscribe(cb, true)
}

func (p *Player) subscribe(cb ChangeCallback, noops bool) func() {
	if cb == nil {
		return func() {}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.callbacks[id] = subscription{cb: cb, noops: noops}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.callbacks, id)
	}
}

// callbacksLocked copies the callbacks in registration order.
// When noop is true only OnPress subscribers are returned.
func (p *Player) callbacksLocked(noop bool) []ChangeCallback {
	callbacks := make([]ChangeCallback, 0, len(p.callbacks))
	for id := uint64(0); id < p.nextID; id++ {
		sub, ok := p.callbacks[id]
		if !ok || (noop && !sub.noops) {
			continue
		}
		callbacks = append(callbacks, sub.cb)
	}
	return callbacks
}
