// Package renderer provides the interactive terminal console.
//
// The console draws the edit buffer, the player state and the undo/redo
// depth on a tcell screen, and maps keys to commands:
//
//	p       play
//	space   pause
//	s       stop
//	u / r   undo / redo
//	i       insert mode (Esc returns)
//	q, Esc  quit
//
// Tests drive it with tcell's simulation screen.
package renderer
