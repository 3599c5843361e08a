package pipeline

import (
	"fmt"
	"time"

	"github.com/arthur-debert/simctl/pkg/errors"
)

// Pipeline is a named, ordered list of steps with its argument validators.
type Pipeline[A Args] struct {
	Name       string
	Title      string
	Steps      []Step[A]
	Validators []Validator[A]
}

// New creates a pipeline.
func New[A Args](name string, steps ...Step[A]) *Pipeline[A] {
	return &Pipeline[A]{Name: name, Steps: steps}
}

// WithValidators appends validators and returns the pipeline for chaining.
func (p *Pipeline[A]) WithValidators(validators ...Validator[A]) *Pipeline[A] {
	p.Validators = append(p.Validators, validators...)
	return p
}

// StepNames lists the step names in execution order.
func (p *Pipeline[A]) StepNames() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name()
	}
	return names
}

// Validate runs every validator and returns the first failure wrapped as
// INVALID_INPUT.
func (p *Pipeline[A]) Validate(args A) error {
	for _, v := range p.Validators {
		if err := v(args); err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "invalid arguments for pipeline %q", p.Name).
				WithDetail("pipeline", p.Name).
				WithDetail("target", args.Target())
		}
	}
	return nil
}

// Execute validates args and runs the steps in order. The returned Result is
// never nil; the error is the one recorded on it.
func (p *Pipeline[A]) Execute(args A, hooks ...Hook) (*Result, error) {
	start := time.Now()
	result := &Result{
		Pipeline: p.Name,
		Target:   args.Target(),
		State:    RunRunning,
		Steps:    make([]StepResult, len(p.Steps)),
	}
	for i, s := range p.Steps {
		result.Steps[i] = StepResult{Name: s.Name(), State: StepNotStarted}
	}

	finish := func(state RunState, err error) (*Result, error) {
		result.State = state
		result.Error = err
		result.Duration = time.Since(start)
		for _, h := range hooks {
			h.PipelineFinished(result)
		}
		return result, err
	}

	for _, h := range hooks {
		h.PipelineStarted(p.Name, result.Target)
	}

	if err := p.Validate(args); err != nil {
		return finish(RunAborted, err)
	}

	for i, step := range p.Steps {
		sr := &result.Steps[i]

		if args.Cancelled() {
			err := errors.Newf(errors.ErrStepCancelled, "pipeline %q cancelled before step %q", p.Name, sr.Name).
				WithDetail("pipeline", p.Name).
				WithDetail("step", sr.Name).
				WithDetail("target", result.Target)
			return finish(RunAborted, err)
		}

		if !step.ShouldRun(args) {
			sr.State = StepSkipped
			for _, h := range hooks {
				h.StepFinished(p.Name, *sr)
			}
			continue
		}

		if pr, ok := step.(ParamReporter[A]); ok {
			sr.Params = pr.Params(args)
		}
		sr.State = StepRunning
		for _, h := range hooks {
			h.StepStarted(p.Name, sr.Name, sr.Params)
		}

		stepStart := time.Now()
		err := runStep(step, args, sr.Name)
		sr.Duration = time.Since(stepStart)

		if err != nil {
			sr.State = StepFailed
			sr.Error = err
			for _, h := range hooks {
				h.StepFinished(p.Name, *sr)
			}
			wrapped := errors.Wrapf(err, errors.ErrStepExecute, "step %q of pipeline %q failed", sr.Name, p.Name).
				WithDetail("pipeline", p.Name).
				WithDetail("step", sr.Name).
				WithDetail("target", result.Target)
			return finish(RunAborted, wrapped)
		}

		sr.State = StepSucceeded
		if s, ok := step.(Summarizer[A]); ok {
			sr.Summary = s.Summary(args)
		}
		for _, h := range hooks {
			h.StepFinished(p.Name, *sr)
		}
	}

	return finish(RunCompleted, nil)
}

// runStep runs step and turns a panic into an ErrStepExecute error.
func runStep[A Args](step Step[A], args A, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrStepExecute, "step %q panicked: %v", name, r).
				WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return step.Run(args)
}
