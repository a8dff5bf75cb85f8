package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/player"
)

// Mode is the console input mode.
type Mode uint8

const (
	// ModeCommand maps keys to player and history commands.
	ModeCommand Mode = iota
	// ModeInsert types characters into the buffer.
	ModeInsert
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeInsert {
		return "insert"
	}
	return "command"
}

var (
	titleStyle  = tcell.StyleDefault.Reverse(true).Bold(true)
	textStyle   = tcell.StyleDefault
	statusStyle = tcell.StyleDefault.Reverse(true)
	helpStyle   = tcell.StyleDefault.Dim(true)
)

const helpCommand = "p play  space pause  s stop  u undo  r redo  i insert  q quit"
const helpInsert = "type to insert  Backspace delete  Esc command mode"

// Console draws the buffer and player state and maps keys to commands.
type Console struct {
	mu sync.Mutex

	screen tcell.Screen
	engine *engine.Engine
	player *player.Player

	mode    Mode
	message string
}

// NewConsole creates a console on an initialized screen.
func NewConsole(screen tcell.Screen, e *engine.Engine, p *player.Player) *Console {
	return &Console{
		screen:  screen,
		engine:  e,
		player:  p,
		message: "ready",
	}
}

// Mode returns the current input mode.
func (c *Console) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Message returns the last status message.
func (c *Console) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// HandleKey applies a key press. Returns false when the console should quit.
func (c *Console) HandleKey(ev *tcell.EventKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if isInterrupt(ev) {
		return false
	}

	if c.mode == ModeInsert {
		c.handleInsertLocked(ev)
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'p':
		c.message = c.player.PressPlay().String()
	case ' ':
		c.message = c.player.PressPause().String()
	case 's':
		c.message = c.player.PressStop().String()
	case 'u':
		c.message = c.stepLocked("undo", c.engine.Undo)
	case 'r':
		c.message = c.stepLocked("redo", c.engine.Redo)
	case 'i':
		c.mode = ModeInsert
		c.message = "insert mode"
	default:
		c.message = fmt.Sprintf("unbound key %q", ev.Rune())
	}
	return true
}

// isInterrupt reports Ctrl-C in either of the forms terminals deliver it.
func isInterrupt(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	return ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 &&
		(ev.Rune() == 'c' || ev.Rune() == 'C')
}

func (c *Console) stepLocked(op string, apply func() (bool, error)) string {
	ok, err := apply()
	switch {
	case err != nil:
		return fmt.Sprintf("%s failed: %v", op, err)
	case !ok:
		return "nothing to " + op
	default:
		return op + " applied"
	}
}

func (c *Console) handleInsertLocked(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		c.mode = ModeCommand
		c.message = "command mode"
	case tcell.KeyEnter:
		c.insertLocked("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		n := c.engine.Len()
		if n == 0 {
			c.message = "nothing to delete"
			return
		}
		if removed, err := c.engine.Delete(n-1, n); err != nil {
			c.message = err.Error()
		} else {
			c.message = fmt.Sprintf("deleted %q", removed)
		}
	case tcell.KeyRune:
		c.insertLocked(string(ev.Rune()))
	}
}

func (c *Console) insertLocked(text string) {
	if err := c.engine.Insert(text, c.engine.Len()); err != nil {
		c.message = err.Error()
		return
	}
	c.message = fmt.Sprintf("inserted %q", text)
}

// Draw renders the console to the screen and shows it.
func (c *Console) Draw() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.screen
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}

	fill(s, 0, width, titleStyle)
	drawText(s, 0, 0, width, titleStyle, " patternkit console")

	// Buffer lines between the title and the two status rows.
	lines := c.engine.LineCount()
	for i := 0; i < lines && i+1 < height-2; i++ {
		drawText(s, 0, i+1, width, textStyle, c.engine.LineText(i))
	}

	if height >= 3 {
		status := fmt.Sprintf(" player: %-8s | undo: %d redo: %d | mode: %s",
			c.player.State().Name(), c.engine.UndoCount(), c.engine.RedoCount(), c.mode)
		fill(s, height-2, width, statusStyle)
		drawText(s, 0, height-2, width, statusStyle, status)
	}

	help := helpCommand
	if c.mode == ModeInsert {
		help = helpInsert
	}
	drawText(s, 0, height-1, width, helpStyle, c.message+"  |  "+help)

	s.Show()
}

// Run draws and handles events until quit or ctx is done.
// The screen must already be initialized; Run does not finalize it.
func (c *Console) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		c.Draw()

		ev := c.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !c.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			c.screen.Sync()
		}
	}
}

func fill(s tcell.Screen, y, width int, style tcell.Style) {
	for x := 0; x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= width {
			return
		}
		if r == '\t' {
			r = ' '
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
