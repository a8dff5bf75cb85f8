package loader

import (
	"strconv"
	"strings"
)

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// EnvLoader loads configuration from environment variables.
//
// Each known setting "section.key" is read from PREFIX_SECTION_KEY, so
// history.max_entries maps to PATTERNKIT_HISTORY_MAX_ENTRIES.
type EnvLoader struct {
	prefix string
	paths  []string
	lookup LookupFunc
}

// NewEnvLoader creates a loader for the given setting paths.
// The prefix should include the trailing underscore (e.g., "PATTERNKIT_").
func NewEnvLoader(prefix string, paths []string, lookup LookupFunc) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		paths:  paths,
		lookup: lookup,
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	if l.lookup == nil {
		return config, nil
	}

	for _, path := range l.paths {
		if val, ok := l.lookup(l.EnvName(path)); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	return config, nil
}

// EnvName returns the environment variable for a setting path.
func (l *EnvLoader) EnvName(path string) string {
	return l.prefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// parseValue attempts to parse the string value into an appropriate type.
// Durations stay strings; the decoder parses them.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
