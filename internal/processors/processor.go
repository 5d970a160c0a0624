// Package processors implements the named, toggleable frame transformations
// applied by the pipeline chain. Concrete processors register themselves by
// name so the CLI can build a chain from a list of processor names.
package processors

import (
	"errors"
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Processor is one unit of work in the frame chain. Transform takes one frame
// and returns a new frame the caller owns; the input is never modified or
// closed. A disabled processor stays in its chain and is skipped there.
type Processor interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Transform(input gocv.Mat) (gocv.Mat, error)
	Params() map[string]interface{}
	Close() error
}

var errEmptyFrame = errors.New("input frame is empty")

// ProcessingError reports a frame a processor could not handle.
type ProcessingError struct {
	Processor string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processor %q: %v", e.Processor, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

type factory func(params map[string]interface{}) Processor

var registry = map[string]factory{}

func register(name string, f factory) {
	registry[name] = f
}

// New builds a registered processor. A nil params map selects the defaults.
func New(name string, params map[string]interface{}) (Processor, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s", name)
	}
	return f(params), nil
}

// Names lists every registered processor name in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// state carries the fields every processor shares.
type state struct {
	name    string
	enabled bool
}

func (s *state) Name() string            { return s.name }
func (s *state) Enabled() bool           { return s.enabled }
func (s *state) SetEnabled(enabled bool) { s.enabled = enabled }

func intParam(params map[string]interface{}, key string, def int) int {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return def
}
