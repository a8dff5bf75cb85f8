package lua

import (
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations and counts host calls.
type Sandbox struct {
	L *lua.LState

	// A limit of 0 disables counting.
	callLimit int64
	callCount int64
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState, callLimit int64) *Sandbox {
	return &Sandbox{
		L:         L,
		callLimit: callLimit,
	}
}

// Install removes functions that load code from outside the script.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
}

// ResetCallCount resets the call counter.
func (s *Sandbox) ResetCallCount() {
	atomic.StoreInt64(&s.callCount, 0)
}

// CallCount returns the number of host calls since the last reset.
func (s *Sandbox) CallCount() int64 {
	return atomic.LoadInt64(&s.callCount)
}

// CountCall records one host call and returns true if the limit is exceeded.
func (s *Sandbox) CountCall() bool {
	n := atomic.AddInt64(&s.callCount, 1)
	return s.callLimit > 0 && n > s.callLimit
}
