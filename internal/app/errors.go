package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")

	// ErrUnsupportedFile indicates a file type that cannot be run.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrMetricsDisabled indicates the metrics endpoint is turned off in the config.
	ErrMetricsDisabled = errors.New("metrics disabled (set metrics.enabled = true)")
)

// FileError represents a failure running a file.
type FileError struct {
	Op   string // "run" or "watch"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
