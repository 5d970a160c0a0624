// Package pipeline holds the orchestration core: the ordered processor
// chain, the frame-rate monitor, and the runner that drives the capture →
// process → display loop.
package pipeline

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"webcam-vision/internal/processors"
)

// ErrOutOfRange is returned for a processor index a chain does not have.
var ErrOutOfRange = errors.New("processor index out of range")

// Chain is the ordered sequence of processors applied to every frame.
// Insertion order is application order. Toggling disables a processor in
// place rather than removing it, so the index-based keyboard commands stay
// stable across toggles.
//
// A Chain is not safe for concurrent use; the runner owns it and mutates it
// only between loop iterations.
type Chain struct {
	stages []processors.Processor
}

func NewChain() *Chain {
	return &Chain{}
}

// Add appends a processor to the end of the chain.
func (c *Chain) Add(p processors.Processor) error {
	if p == nil {
		return errors.New("cannot add nil processor")
	}
	c.stages = append(c.stages, p)
	return nil
}

// Remove drops the processor at index i and releases its resources. An
// out-of-range index is an error, not a silent no-op.
func (c *Chain) Remove(i int) error {
	if i < 0 || i >= len(c.stages) {
		return fmt.Errorf("remove %d of %d: %w", i, len(c.stages), ErrOutOfRange)
	}
	c.stages[i].Close()
	c.stages = append(c.stages[:i], c.stages[i+1:]...)
	return nil
}

// Toggle flips the enabled flag of the processor at index i.
func (c *Chain) Toggle(i int) error {
	if i < 0 || i >= len(c.stages) {
		return fmt.Errorf("toggle %d of %d: %w", i, len(c.stages), ErrOutOfRange)
	}
	p := c.stages[i]
	p.SetEnabled(!p.Enabled())
	return nil
}

// Clear removes every processor and releases their resources.
func (c *Chain) Clear() {
	for _, p := range c.stages {
		p.Close()
	}
	c.stages = c.stages[:0]
}

func (c *Chain) Len() int {
	return len(c.stages)
}

// Processors returns the stages in application order.
func (c *Chain) Processors() []processors.Processor {
	out := make([]processors.Processor, len(c.stages))
	copy(out, c.stages)
	return out
}

// ActiveNames lists the enabled processors in application order.
func (c *Chain) ActiveNames() []string {
	names := make([]string, 0, len(c.stages))
	for _, p := range c.stages {
		if p.Enabled() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Apply folds every enabled processor over frame in order and returns the
// result, which the caller owns and must close. The input frame is never
// modified. An empty or fully disabled chain returns a plain clone. A failing
// processor aborts the fold and its error propagates; the chain never
// swallows a processing error, since silently passing on a corrupt frame is
// worse than a visible failure.
func (c *Chain) Apply(frame gocv.Mat) (gocv.Mat, error) {
	current := frame.Clone()
	for _, p := range c.stages {
		if !p.Enabled() {
			continue
		}
		next, err := p.Transform(current)
		if err != nil {
			current.Close()
			next.Close()
			return gocv.NewMat(), err
		}
		current.Close()
		current = next
	}
	return current, nil
}
