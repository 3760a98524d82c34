// Package chain executes a sequence of independent mutating commands as one
// logical unit, recording a per-step outcome log and an aggregate result.
//
// Execution is strictly sequential and synchronous. When a step fails and
// StopOnError is set (the default), the remaining steps are not run and are
// recorded as Skipped. Cancellation is observed between steps only: a step
// that has started runs to completion, then every remaining step is
// recorded as Skipped.
package chain

import (
	"context"
	"time"
)

// Outcome classifies one step's result.
type Outcome string

const (
	Success Outcome = "success"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
)

// State is the chain's lifecycle state.
type State int

const (
	NotStarted State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Step is one command in the chain.
type Step struct {
	// Name labels the step in the result log.
	Name string
	// Args are the literal command arguments, recorded verbatim in the
	// step's result.
	Args []string
	// Run executes the step. A nil error is Success, any other error is
	// Failed.
	Run func(ctx context.Context) error
}

// Result is one step's recorded outcome.
type Result struct {
	Name     string
	Args     []string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Context tracks the sequential execution of a chain.
type Context struct {
	// StopOnError stops the chain at the first Failed step, recording the
	// remaining steps as Skipped. Defaults to true.
	StopOnError bool

	steps   []Step
	results []Result
	state   State
}

// New returns an empty chain with StopOnError enabled.
func New() *Context {
	return &Context{StopOnError: true}
}

// Add appends a step. Steps added after Run has been called are ignored.
func (c *Context) Add(step Step) {
	if c.state != NotStarted {
		return
	}
	c.steps = append(c.steps, step)
}

// Len returns the number of steps.
func (c *Context) Len() int { return len(c.steps) }

// State returns the chain's current state.
func (c *Context) State() State { return c.state }

// Results returns the ordered result log. Complete (one entry per step)
// once Run has returned.
func (c *Context) Results() []Result { return c.results }

// OK reports whether the chain has run and every recorded outcome is
// Success.
func (c *Context) OK() bool {
	if c.state != Completed && c.state != Aborted {
		return false
	}
	for _, r := range c.results {
		if r.Outcome != Success {
			return false
		}
	}
	return true
}

// Run executes the steps in order. Each step runs exactly once; its
// outcome is appended to the result log together with its duration and
// arguments. Run returns the final state: Completed when every step was
// executed (regardless of individual failures when StopOnError is false),
// Aborted when remaining steps were skipped.
func (c *Context) Run(ctx context.Context) State {
	if c.state != NotStarted {
		return c.state
	}
	c.state = Running

	skipRemaining := false
	skipped := false
	for _, step := range c.steps {
		if !skipRemaining && ctx.Err() != nil {
			skipRemaining = true
		}
		if skipRemaining {
			c.results = append(c.results, Result{
				Name:    step.Name,
				Args:    step.Args,
				Outcome: Skipped,
			})
			skipped = true
			continue
		}

		start := time.Now()
		err := step.Run(ctx)
		r := Result{
			Name:     step.Name,
			Args:     step.Args,
			Duration: time.Since(start),
		}
		if err != nil {
			r.Outcome = Failed
			r.Err = err
			if c.StopOnError {
				skipRemaining = true
			}
		} else {
			r.Outcome = Success
		}
		c.results = append(c.results, r)
	}

	// A failure on the last step leaves nothing to skip; the chain still
	// completed in the sense that every step ran.
	if skipped {
		c.state = Aborted
	} else {
		c.state = Completed
	}
	return c.state
}
