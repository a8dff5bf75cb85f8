// Package config loads patternkit settings.
//
// Settings come from three places, lowest precedence first:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, usually patternkit.toml
//  3. Environment variables named PATTERNKIT_<SECTION>_<KEY>
//
// A missing file is not an error. After merging, Validate checks the result
// and reports every problem as a *ValidationError.
//
// Example file:
//
//	[history]
//	max_entries = 1000
//
//	[log]
//	level = "info"    # debug|info|warn|error
//	format = "text"   # text|json
//
//	[metrics]
//	enabled = false
//	listen = ":9464"
//
//	[script]
//	watch_debounce = "200ms"
//	lua_call_limit = 100000
package config
