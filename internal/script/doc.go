// Package script replays YAML scenarios against an edit engine and a player.
//
// A scenario names the starting text and a list of steps:
//
//	name: round trip
//	text: "The quick brown fox."
//	steps:
//	  - op: insert
//	    text: "lazy "
//	    at: 4
//	  - op: delete
//	    start: 14
//	    end: 20
//	  - op: undo
//	  - op: expect_text
//	    want: "The lazy quick brown fox."
//
// Edit ops: insert, delete, undo, redo, group, endgroup, snapshot, restore.
// Player ops: play, pause, stop. Checks: expect_text, expect_state and
// expect_noop, which asserts that the previous step changed nothing.
//
// The Runner narrates each step to its Out writer. A failing step stops the
// run with a *StepError.
package script
