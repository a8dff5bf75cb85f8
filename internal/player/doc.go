// Package player implements a media player whose behavior depends on its
// current state.
//
// A Player starts Stopped and moves between Stopped, Playing and Paused as
// the play, pause and stop buttons are pressed. Each state decides what a
// button does; pressing a button that has no meaning in the current state
// (pause while stopped, play while playing) is reported as a Transition whose
// Changed method returns false. It is never an error.
//
//	| State   | play      | pause    | stop      |
//	|---------|-----------|----------|-----------|
//	| Stopped | → Playing | no-op    | no-op     |
//	| Playing | no-op     | → Paused | → Stopped |
//	| Paused  | → Playing | no-op    | → Stopped |
//
// Observers registered with OnChange are notified after each real transition,
// outside the player's lock.
package player
