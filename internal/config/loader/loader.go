// Package loader reads raw configuration maps from TOML files and the
// environment.
//
// Loaders return map[string]any trees keyed by section. The config package
// applies them in precedence order and decodes the result.
package loader

import "os"

// Loader produces one layer of settings.
// A source that does not exist yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

var (
	_ Loader = (*TOMLLoader)(nil)
	_ Loader = (*EnvLoader)(nil)
)

// FileSystem reads whole files. fstest.MapFS satisfies it in tests.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// DefaultFS returns the operating system file system.
func DefaultFS() FileSystem {
	return osFS{}
}
