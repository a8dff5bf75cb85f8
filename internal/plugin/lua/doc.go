// Package lua runs Lua scripts against an edit engine and a player.
//
// Scripts run in a gopher-lua state with only the base, table, string and
// math libraries. File loading functions are removed. Two modules are
// installed as globals:
//
//	editor.insert(text, pos)      editor.delete(start, end) -> removed
//	editor.undo() -> bool         editor.redo() -> bool
//	editor.text() -> string       editor.snapshot(name)
//	editor.restore(name)          editor.begin_group(name)
//	editor.end_group()            editor.cancel_group()
//	editor.checkpoint([name])     editor.back() -> bool
//	editor.forward() -> bool
//
//	player.play() -> changed, message
//	player.pause() -> changed, message
//	player.stop() -> changed, message
//	player.state() -> string
//
// print writes to the runner's Out writer. Errors raised in Lua, and errors
// returned by the engine, are returned to Go as a *ScriptError.
//
// Example:
//
//	editor.insert("lazy ", 4)
//	assert(editor.undo())
//	assert(not editor.undo(), "history should be empty")
//	player.play()
//	print(player.state())
package lua
