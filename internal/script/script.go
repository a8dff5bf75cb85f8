package script

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/dshills/patternkit/internal/player"
)

// Ops understood by the runner.
const (
	OpInsert      = "insert"
	OpDelete      = "delete"
	OpUndo        = "undo"
	OpRedo        = "redo"
	OpGroup       = "group"
	OpEndGroup    = "endgroup"
	OpSnapshot    = "snapshot"
	OpRestore     = "restore"
	OpCheckpoint  = "checkpoint"
	OpBack        = "back"
	OpForward     = "forward"
	OpPlay        = "play"
	OpPause       = "pause"
	OpStop        = "stop"
	OpExpectText  = "expect_text"
	OpExpectState = "expect_state"
	OpExpectNoop  = "expect_noop"
)

// ErrInvalidScript is wrapped by every parse and validation error.
var ErrInvalidScript = errors.New("invalid script")

// Script is a parsed scenario.
type Script struct {
	Name string `yaml:"name"`
	// Text is the initial buffer content.
	Text string `yaml:"text"`
	// State is the initial player state; empty means stopped.
	State string `yaml:"state,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one scenario operation.
type Step struct {
	Op    string `yaml:"op"`
	Text  string `yaml:"text,omitempty"`
	At    *int   `yaml:"at,omitempty"`
	Start *int   `yaml:"start,omitempty"`
	End   *int   `yaml:"end,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Want  string `yaml:"want,omitempty"`

	// Line is the source line of the step, when parsed from YAML.
	Line int `yaml:"-"`
}

// UnmarshalYAML decodes a step and records its line.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type rawStep Step
	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = Step(raw)
	s.Line = node.Line
	return nil
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and parses a scenario file.
func LoadFile(filename string) (*Script, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", filename, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if s.Name == "" {
		s.Name = path.Base(filename)
	}
	return s, nil
}

// Validate checks that every step has the fields its op needs.
func (s *Script) Validate() error {
	if s.State != "" {
		if _, ok := player.StateByName(s.State); !ok {
			return fmt.Errorf("%w: unknown initial state %q", ErrInvalidScript, s.State)
		}
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return &StepError{Index: i, Op: step.Op, Line: step.Line, Err: fmt.Errorf("%w: %v", ErrInvalidScript, err)}
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Op {
	case OpInsert:
		if s.At == nil {
			return errors.New("insert needs at")
		}
		if s.Text == "" {
			return errors.New("insert needs text")
		}
	case OpDelete:
		if s.Start == nil || s.End == nil {
			return errors.New("delete needs start and end")
		}
	case OpSnapshot, OpRestore:
		if s.Name == "" {
			return fmt.Errorf("%s needs name", s.Op)
		}
	case OpExpectText:
		// An empty want is a valid expectation.
	case OpExpectState:
		if _, ok := player.StateByName(s.Want); !ok {
			return fmt.Errorf("expect_state: unknown state %q", s.Want)
		}
	case OpUndo, OpRedo, OpGroup, OpEndGroup, OpCheckpoint, OpBack, OpForward, OpPlay, OpPause, OpStop, OpExpectNoop:
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

// StepError reports the step that failed.
type StepError struct {
	// Index is the zero-based step index.
	Index int
	Op    string
	// Line is the YAML source line, or 0 if unknown.
	Line int
	Err  error
}

func (e *StepError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("step %d (%s, line %d): %v", e.Index+1, e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

//go:embed demos/*.yaml
var demoFS embed.FS

// Demos returns the built-in scenarios in name order.
func Demos() ([]*Script, error) {
	entries, err := demoFS.ReadDir("demos")
	if err != nil {
		return nil, err
	}

	demos := make([]*Script, 0, len(entries))
	for _, entry := range entries {
		data, err := demoFS.ReadFile("demos/" + entry.Name())
		if err != nil {
			return nil, err
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("demo %s: %w", entry.Name(), err)
		}
		demos = append(demos, s)
	}
	return demos, nil
}
