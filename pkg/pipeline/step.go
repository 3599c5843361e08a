package pipeline

// FuncStep adapts plain functions to the Step interface. A nil When always
// runs; nil Describe and Summarize contribute nothing.
type FuncStep[A Args] struct {
	StepName  string
	When      func(A) bool
	Do        func(A) error
	Describe  func(A) map[string]string
	Summarize func(A) string
}

// NewStep returns a step that always runs fn.
func NewStep[A Args](name string, fn func(A) error) *FuncStep[A] {
	return &FuncStep[A]{StepName: name, Do: fn}
}

// Name implements Step.
func (s *FuncStep[A]) Name() string { return s.StepName }

// ShouldRun implements Step.
func (s *FuncStep[A]) ShouldRun(args A) bool {
	if s.When == nil {
		return true
	}
	return s.When(args)
}

// Run implements Step.
func (s *FuncStep[A]) Run(args A) error {
	if s.Do == nil {
		return nil
	}
	return s.Do(args)
}

// Params implements ParamReporter.
func (s *FuncStep[A]) Params(args A) map[string]string {
	if s.Describe == nil {
		return nil
	}
	return s.Describe(args)
}

// Summary implements Summarizer.
func (s *FuncStep[A]) Summary(args A) string {
	if s.Summarize == nil {
		return ""
	}
	return s.Summarize(args)
}

// OnlyIf sets the gate and returns the step for chaining.
func (s *FuncStep[A]) OnlyIf(when func(A) bool) *FuncStep[A] {
	s.When = when
	return s
}

// WithParams sets the parameter reporter and returns the step for chaining.
func (s *FuncStep[A]) WithParams(describe func(A) map[string]string) *FuncStep[A] {
	s.Describe = describe
	return s
}

// WithSummary sets the outcome reporter and returns the step for chaining.
func (s *FuncStep[A]) WithSummary(summarize func(A) string) *FuncStep[A] {
	s.Summarize = summarize
	return s
}
