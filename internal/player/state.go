package player

// State names.
const (
	StateStopped = "stopped"
	StatePlaying = "playing"
	StatePaused  = "paused"
)

// State is the behavior of the player for one of its states.
//
// Each handler decides what the button does in this state. A handler that
// changes state calls p.transitionTo and returns the message describing
// what happened. The set of states is closed.
type State interface {
	// Name returns the state name.
	Name() string

	// Play handles the play button.
	Play(p *Player) string

	// Pause handles the pause button.
	Pause(p *Player) string

	// Stop handles the stop button.
	Stop(p *Player) string

	isState()
}

// Stopped is the initial state. Nothing is playing and the position is at
// the beginning.
type Stopped struct{}

func (Stopped) Name() string { return StateStopped }

func (Stopped) Play(p *Player) string {
	p.transitionTo(Playing{})
	return "starting playback from the beginning"
}

func (Stopped) Pause(*Player) string { return "cannot pause when already stopped" }

func (Stopped) Stop(*Player) string { return "already stopped" }

func (Stopped) isState() {}

// Playing is active playback.
type Playing struct{}

func (Playing) Name() string { return StatePlaying }

func (Playing) Play(*Player) string { return "already playing" }

func (Playing) Pause(p *Player) string {
	p.transitionTo(Paused{})
	return "pausing playback"
}

func (Playing) Stop(p *Player) string {
	p.transitionTo(Stopped{})
	return "stopping playback, rewinding"
}

func (Playing) isState() {}

// Paused holds the current position without playing.
type Paused struct{}

func (Paused) Name() string { return StatePaused }

func (Paused) Play(p *Player) string {
	p.transitionTo(Playing{})
	return "resuming playback from current position"
}

func (Paused) Pause(*Player) string { return "already paused" }

func (Paused) Stop(p *Player) string {
	p.transitionTo(Stopped{})
	return "stopping playback, rewinding"
}

func (Paused) isState() {}

// States lists every state in table order.
var States = []State{Stopped{}, Playing{}, Paused{}}

// StateByName returns the state with the given name.
func StateByName(name string) (State, bool) {
	for _, s := range States {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
