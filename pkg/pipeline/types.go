package pipeline

import (
	"sync/atomic"
	"time"
)

// Args is the contract every pipeline arguments type satisfies.
type Args interface {
	// Target names what the run acts on, for logs and error details.
	Target() string
	// Cancelled reports whether the run was asked to stop.
	Cancelled() bool
}

// Cancellation is a cooperative cancel flag meant to be embedded in args
// types. Steps observe it at entry.
type Cancellation struct {
	flag atomic.Bool
}

// Cancel requests that the run stop before the next step.
func (c *Cancellation) Cancel() { c.flag.Store(true) }

// Cancelled reports whether Cancel was called.
func (c *Cancellation) Cancelled() bool { return c.flag.Load() }

// Step is one unit of work in a pipeline.
type Step[A Args] interface {
	Name() string
	// ShouldRun gates the step; a false result records it as Skipped.
	ShouldRun(args A) bool
	Run(args A) error
}

// ParamReporter is implemented by steps that expose their effective
// parameters to hooks.
type ParamReporter[A Args] interface {
	Params(args A) map[string]string
}

// Summarizer is implemented by steps that describe their outcome.
type Summarizer[A Args] interface {
	Summary(args A) string
}

// Validator checks arguments before any step runs.
type Validator[A Args] func(args A) error

// StepState is the lifecycle state of a step within one run.
type StepState int

const (
	StepNotStarted StepState = iota
	StepSkipped
	StepRunning
	StepSucceeded
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepNotStarted:
		return "not started"
	case StepSkipped:
		return "skipped"
	case StepRunning:
		return "running"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunState is the state of a whole pipeline run.
type RunState int

const (
	RunRunning RunState = iota
	RunCompleted
	RunAborted
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepResult records what happened to a single step.
type StepResult struct {
	Name     string
	State    StepState
	Params   map[string]string
	Summary  string
	Error    error
	Duration time.Duration
}

// Result records one pipeline run.
type Result struct {
	Pipeline string
	Target   string
	State    RunState
	Steps    []StepResult
	Error    error
	Duration time.Duration
}

// Count returns how many steps ended in state.
func (r *Result) Count(state StepState) int {
	n := 0
	for _, s := range r.Steps {
		if s.State == state {
			n++
		}
	}
	return n
}

// FailedStep returns the step that aborted the run, or nil.
func (r *Result) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].State == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Succeeded reports whether the run completed.
func (r *Result) Succeeded() bool {
	return r.State == RunCompleted
}
