// Package wizard implements the linear step controller behind every
// workflow: a current step that only advances when the next step's
// readiness predicate holds, and retreats freely.
package wizard

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrStepDisabled   = errors.New("next step is not enabled")
	ErrNoNextStep     = errors.New("already at the last step")
	ErrNoPreviousStep = errors.New("already at the first step")
	ErrInvalidStep    = errors.New("invalid step")
	ErrNoSteps        = errors.New("wizard has no steps")
)

// Predicate reports whether a step may be entered.
type Predicate func() bool

// Hook runs before a step is entered. A non-nil error keeps the wizard where it is.
type Hook func(ctx context.Context) error

type Step struct {
	Number  int
	Title   string
	Enabled Predicate
	Before  Hook
}

func (s Step) enabled() bool {
	return s.Enabled == nil || s.Enabled()
}

type Controller struct {
	mu      sync.Mutex
	steps   []Step
	current int
}

// New returns a controller positioned on step 1. Steps are renumbered 1..N in order.
func New(steps ...Step) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	c := &Controller{
		steps:   make([]Step, len(steps)),
		current: 1,
	}
	for i, s := range steps {
		s.Number = i + 1
		c.steps[i] = s
	}

	return c, nil
}

func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.steps[c.current-1]
}

func (c *Controller) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Step(nil), c.steps...)
}

func (c *Controller) IsFinal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current == len(c.steps)
}

// CanAdvance reports whether the next step exists and is enabled.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current < len(c.steps) && c.steps[c.current].enabled()
}

// Advance moves to the next step once its predicate holds and its hook succeeds.
// The hook runs without the controller lock held.
func (c *Controller) Advance(ctx context.Context) (Step, error) {
	c.mu.Lock()
	from := c.current
	if from >= len(c.steps) {
		c.mu.Unlock()

		return Step{}, ErrNoNextStep
	}
	next := c.steps[from]
	if !next.enabled() {
		c.mu.Unlock()

		return Step{}, ErrStepDisabled
	}
	c.mu.Unlock()

	if next.Before != nil {
		if err := next.Before(ctx); err != nil {
			return Step{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != from {
		return c.steps[c.current-1], nil
	}
	c.current = next.Number

	return next, nil
}

// Retreat moves to the previous step. Side effects of later steps are kept.
func (c *Controller) Retreat() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current <= 1 {
		return Step{}, ErrNoPreviousStep
	}
	c.current--

	return c.steps[c.current-1], nil
}

// GoTo jumps back to an earlier (or the current) step.
func (c *Controller) GoTo(n int) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 || n > c.current {
		return Step{}, ErrInvalidStep
	}
	c.current = n

	return c.steps[n-1], nil
}
