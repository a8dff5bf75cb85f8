package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrCallLimit is returned when a script makes too many host calls.
	ErrCallLimit = errors.New("lua call limit exceeded")
)

// ScriptError is an error raised while running a script.
type ScriptError struct {
	// Source names the script, a file path or "<string>".
	Source string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Source, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
