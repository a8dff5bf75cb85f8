package lua

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/player"
)

// BindEditor installs the editor module for e.
func (s *State) BindEditor(e *engine.Engine) {
	s.RegisterModule("editor", map[string]lua.LGFunction{
		"insert": func(L *lua.LState) int {
			text := L.CheckString(1)
			pos := L.CheckInt(2)
			if err := e.Insert(text, pos); err != nil {
				s.Raise(L, err)
			}
			return 0
		},
		"delete": func(L *lua.LState) int {
			start := L.CheckInt(1)
			end := L.CheckInt(2)
			removed, err := e.Delete(start, end)
			if err != nil {
				s.Raise(L, err)
			}
			L.Push(lua.LString(removed))
			return 1
		},
		"undo":    s.step(e.Undo),
		"redo":    s.step(e.Redo),
		"back":    s.step(e.Back),
		"forward": s.step(e.Forward),
		"checkpoint": func(L *lua.LState) int {
			id := e.Checkpoint(L.OptString(1, ""))
			L.Push(lua.LString(id.String()))
			return 1
		},
		"text": func(L *lua.LState) int {
			L.Push(lua.LString(e.Text()))
			return 1
		},
		"snapshot": func(L *lua.LState) int {
			id := e.CreateSnapshot(L.CheckString(1))
			L.Push(lua.LString(id.String()))
			return 1
		},
		"restore": func(L *lua.LState) int {
			if err := e.RestoreSnapshot(L.CheckString(1)); err != nil {
				s.Raise(L, err)
			}
			return 0
		},
		"begin_group": func(L *lua.LState) int {
			e.BeginGroup(L.OptString(1, "lua"))
			return 0
		},
		"end_group": func(L *lua.LState) int {
			e.EndGroup()
			return 0
		},
		"cancel_group": func(L *lua.LState) int {
			if err := e.CancelGroup(); err != nil {
				s.Raise(L, err)
			}
			return 0
		},
	})
}

// step wraps an operation that reports whether it did anything.
func (s *State) step(fn func() (bool, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		ok, err := fn()
		if err != nil {
			s.Raise(L, err)
		}
		L.Push(lua.LBool(ok))
		return 1
	}
}

// BindPlayer installs the player module for p.
func (s *State) BindPlayer(p *player.Player) {
	press := func(a player.Action) lua.LGFunction {
		return func(L *lua.LState) int {
			t, err := p.Press(a)
			if err != nil {
				s.Raise(L, err)
			}
			L.Push(lua.LBool(t.Changed()))
			L.Push(lua.LString(t.Message))
			return 2
		}
	}

	s.RegisterModule("player", map[string]lua.LGFunction{
		"play":  press(player.ActionPlay),
		"pause": press(player.ActionPause),
		"stop":  press(player.ActionStop),
		"state": func(L *lua.LState) int {
			L.Push(lua.LString(p.State().Name()))
			return 1
		},
	})
}

// BindPrint redirects print to w.
func (s *State) BindPrint(w io.Writer) {
	s.RegisterFunc("print", func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(w, strings.Join(parts, "\t"))
		return 0
	})
}
