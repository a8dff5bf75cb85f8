package history

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// ErrInvalidState is returned when a command is undone without having been
// executed, so there is nothing recorded to reverse.
var ErrInvalidState = errors.New("command has not been executed")

// Kind identifies a command variant.
type Kind uint8

const (
	// KindInsert is an InsertCommand.
	KindInsert Kind = iota
	// KindDelete is a DeleteCommand.
	KindDelete
	// KindCompound is a CompoundCommand.
	KindCompound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Command represents a reversible edit against a buffer.
// The set of implementations is closed; see Kind.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(buf *buffer.Buffer) error

	// Undo reverses the command and returns an error if it fails.
	Undo(buf *buffer.Buffer) error

	// Description returns a human-readable description of the command.
	Description() string

	// Kind returns the command variant.
	Kind() Kind

	isCommand()
}

// InsertCommand inserts text at a fixed position.
type InsertCommand struct {
	Text     string
	Position Offset

	executed bool
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(text string, position Offset) *InsertCommand {
	return &InsertCommand{Text: text, Position: position}
}

// Execute inserts the text at Position.
func (c *InsertCommand) Execute(buf *buffer.Buffer) error {
	if _, err := buf.Insert(c.Position, c.Text); err != nil {
		return fmt.Errorf("insert at offset %d: %w", c.Position, err)
	}
	c.executed = true
	return nil
}

// Undo deletes the span the insertion produced.
func (c *InsertCommand) Undo(buf *buffer.Buffer) error {
	if !c.executed {
		return fmt.Errorf("undo insert: %w", ErrInvalidState)
	}

	end := c.Position + utf8.RuneCountInString(c.Text)
	if _, err := buf.Delete(c.Position, end); err != nil {
		return fmt.Errorf("undo insert: %w", err)
	}
	c.executed = false
	return nil
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	n := utf8.RuneCountInString(c.Text)
	if n == 1 {
		switch c.Text {
		case "\n":
			return "Insert newline"
		case "\t":
			return "Insert tab"
		}
		return fmt.Sprintf("Type '%s'", c.Text)
	}
	if n <= 20 {
		return fmt.Sprintf("Insert %q at %d", c.Text, c.Position)
	}
	return fmt.Sprintf("Insert %d characters at %d", n, c.Position)
}

// Kind returns KindInsert.
func (c *InsertCommand) Kind() Kind { return KindInsert }

func (c *InsertCommand) isCommand() {}

// DeleteCommand deletes the range [Start, End).
// The removed text is captured on Execute so Undo can put it back.
type DeleteCommand struct {
	Start Offset
	End   Offset

	removed  string
	executed bool
}

// NewDeleteCommand creates a new delete command for [start, end).
func NewDeleteCommand(start, end Offset) *DeleteCommand {
	return &DeleteCommand{Start: start, End: end}
}

// Execute removes the range and records the removed text.
func (c *DeleteCommand) Execute(buf *buffer.Buffer) error {
	removed, err := buf.Delete(c.Start, c.End)
	if err != nil {
		return fmt.Errorf("delete range [%d,%d): %w", c.Start, c.End, err)
	}
	c.removed = removed
	c.executed = true
	return nil
}

// Undo reinserts the captured text at Start.
func (c *DeleteCommand) Undo(buf *buffer.Buffer) error {
	if !c.executed {
		return fmt.Errorf("undo delete: %w", ErrInvalidState)
	}

	if _, err := buf.Insert(c.Start, c.removed); err != nil {
		return fmt.Errorf("undo delete: %w", err)
	}
	c.executed = false
	return nil
}

// Removed returns the text captured by the last Execute.
// The second result is false if the command has not been executed.
func (c *DeleteCommand) Removed() (string, bool) {
	return c.removed, c.executed
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	if c.executed && utf8.RuneCountInString(c.removed) <= 20 {
		return fmt.Sprintf("Delete %q", c.removed)
	}
	return fmt.Sprintf("Delete [%d,%d)", c.Start, c.End)
}

// Kind returns KindDelete.
func (c *DeleteCommand) Kind() Kind { return KindDelete }

func (c *DeleteCommand) isCommand() {}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(buf *buffer.Buffer) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(buf); err != nil {
			// Roll back what already ran
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(buf)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order. If a step fails, the steps
// already undone are executed again so the compound stays fully applied.
func (c *CompoundCommand) Undo(buf *buffer.Buffer) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(buf); err != nil {
			for j := i + 1; j < len(c.Commands); j++ {
				_ = c.Commands[j].Execute(buf)
			}
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Kind returns KindCompound.
func (c *CompoundCommand) Kind() Kind { return KindCompound }

func (c *CompoundCommand) isCommand() {}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
