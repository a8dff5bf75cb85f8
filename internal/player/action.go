package player

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for an action outside the Action enum.
var ErrUnknownAction = errors.New("unknown action")

// Action is a button press.
type Action uint8

const (
	// ActionPlay presses the play button.
	ActionPlay Action = iota
	// ActionPause presses the pause button.
	ActionPause
	// ActionStop presses the stop button.
	ActionStop

	// ActionSet marks a transition made by SetState rather than a press.
	// It is not a button: Press and ParseAction reject it.
	ActionSet
)

// Actions lists every button in table order.
var Actions = []Action{ActionPlay, ActionPause, ActionStop}

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	case ActionSet:
		return "set"
	default:
		return "unknown"
	}
}

// ParseAction converts a name such as "play" into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "play":
		return ActionPlay, nil
	case "pause":
		return ActionPause, nil
	case "stop":
		return ActionStop, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}
