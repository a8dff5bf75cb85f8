package lua

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// DefaultCallLimit is the default maximum number of host calls per run.
const DefaultCallLimit = 100_000

// State wraps gopher-lua with the sandbox and error mapping.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go-side
// access; Lua execution itself is single-threaded.
type State struct {
	L *lua.LState

	mu sync.Mutex

	sandbox *Sandbox

	// hostErr is the last error returned by a bound Go function.
	hostErr error

	closed bool
}

// StateOption configures a State.
type StateOption func(*stateConfig)

type stateConfig struct {
	callLimit int64
}

// WithCallLimit sets the maximum host calls per execution. 0 disables it.
func WithCallLimit(limit int64) StateOption {
	return func(c *stateConfig) {
		c.callLimit = limit
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	cfg := stateConfig{callLimit: DefaultCallLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)

	s := &State{
		L:       L,
		sandbox: NewSandbox(L, cfg.callLimit),
	}
	s.sandbox.Install()
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os, debug and package are never opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoString executes Lua source. ctx cancels a running script.
func (s *State) DoString(ctx context.Context, source, code string) error {
	return s.do(ctx, source, func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes a Lua file. ctx cancels a running script.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.do(ctx, path, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) do(ctx context.Context, source string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	s.sandbox.ResetCallCount()
	s.hostErr = nil

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := doWithRecovery(fn)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ScriptError{Source: source, Err: ctxErr}
	}
	// Prefer the Go error that the script failed on so callers can match it
	// with errors.Is.
	if s.hostErr != nil && strings.Contains(err.Error(), s.hostErr.Error()) {
		return &ScriptError{Source: source, Err: s.hostErr}
	}
	return &ScriptError{Source: source, Err: err}
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// RegisterModule registers a global table with the given functions.
// Every function counts against the call limit and may raise host errors
// through Raise.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	wrapped := make(map[string]lua.LGFunction, len(funcs))
	for fname, fn := range funcs {
		wrapped[fname] = s.counted(fn)
	}
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), wrapped))
}

// RegisterFunc registers a Go function as a global Lua function.
func (s *State) RegisterFunc(name string, fn lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.SetGlobal(name, s.L.NewFunction(s.counted(fn)))
}

func (s *State) counted(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		if s.sandbox.CountCall() {
			s.Raise(L, ErrCallLimit)
		}
		return fn(L)
	}
}

// Raise records err as the failing host error and raises it in Lua.
// It does not return.
func (s *State) Raise(L *lua.LState, err error) {
	s.hostErr = err
	L.RaiseError("%s", err.Error())
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// Sandbox returns the sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// Close releases all resources associated with the Lua state.
// After Close is called, DoString and DoFile return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
