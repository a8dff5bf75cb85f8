package history

import (
	"errors"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// Transaction runs fn inside a group. The group is recorded when fn
// succeeds. When fn fails the group is cancelled, which undoes its edits
// against buf.
func (h *History) Transaction(name string, buf *buffer.Buffer, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		if cerr := h.CancelGroup(buf); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}

	h.EndGroup()
	return nil
}

// ExecuteGrouped executes multiple commands as a single undo unit.
// If any command fails, the ones already executed are undone and nothing is
// recorded.
func (h *History) ExecuteGrouped(name string, buf *buffer.Buffer, cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}

	if len(cmds) == 1 {
		return h.Execute(cmds[0], buf)
	}
	return h.Execute(NewCompoundCommand(name, cmds...), buf)
}
