package pipeline

import (
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testArgs struct {
	Cancellation
	name        string
	ran         []string
	attach      string
	cancelAfter string
}

func (a *testArgs) Target() string { return a.name }

func recordStep(name string) *FuncStep[*testArgs] {
	return NewStep(name, func(a *testArgs) error {
		a.ran = append(a.ran, name)
		if a.cancelAfter == name {
			a.Cancel()
		}
		return nil
	})
}

func failingStep(name string, err error) *FuncStep[*testArgs] {
	return NewStep(name, func(a *testArgs) error {
		a.ran = append(a.ran, name)
		return err
	})
}

type recordingHook struct {
	mu     sync.Mutex
	events []string
	final  *Result
}

func (h *recordingHook) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHook) PipelineStarted(p, target string) { h.add("start " + p + " " + target) }
func (h *recordingHook) StepStarted(p, step string, params map[string]string) {
	h.add(fmt.Sprintf("step %s %v", step, params))
}
func (h *recordingHook) StepFinished(p string, s StepResult) {
	h.add("done " + s.Name + " " + s.State.String())
}
func (h *recordingHook) PipelineFinished(r *Result) {
	h.final = r
	h.add("finish " + r.State.String())
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	p := New[*testArgs]("install", recordStep("a"), recordStep("b"), recordStep("c"))
	args := &testArgs{name: "site1"}
	hook := &recordingHook{}

	result, err := p.Execute(args, hook)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, []string{"a", "b", "c"}, args.ran)
	assert.Equal(t, 3, result.Count(StepSucceeded))
	assert.Equal(t, "site1", result.Target)
	assert.Equal(t, []string{
		"start install site1",
		"step a map[]", "done a succeeded",
		"step b map[]", "done b succeeded",
		"step c map[]", "done c succeeded",
		"finish completed",
	}, hook.events)
	assert.Same(t, result, hook.final)
}

func TestExecute_FirstFailureAborts(t *testing.T) {
	boom := stderrors.New("disk full")
	p := New[*testArgs]("install", recordStep("a"), failingStep("b", boom), recordStep("c"))
	args := &testArgs{name: "site1"}

	result, err := p.Execute(args)
	require.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, args.ran)
	assert.Equal(t, RunAborted, result.State)
	assert.Equal(t, StepSucceeded, result.Steps[0].State)
	assert.Equal(t, StepFailed, result.Steps[1].State)
	assert.Equal(t, StepNotStarted, result.Steps[2].State)
	assert.Equal(t, "b", result.FailedStep().Name)

	assert.True(t, errors.IsErrorCode(err, errors.ErrStepExecute))
	assert.ErrorIs(t, err, boom)
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "install", details["pipeline"])
	assert.Equal(t, "b", details["step"])
	assert.Equal(t, "site1", details["target"])
	assert.Equal(t, err, result.Error)
}

func TestExecute_PanickingStepAborts(t *testing.T) {
	nilMap := NewStep("b", func(a *testArgs) error {
		var m map[string]string
		m["key"] = "value"
		return nil
	})
	p := New[*testArgs]("install", recordStep("a"), nilMap, recordStep("c"))
	args := &testArgs{name: "site1"}
	hook := &recordingHook{}

	var (
		result *Result
		err    error
	)
	require.NotPanics(t, func() {
		result, err = p.Execute(args, hook)
	})
	require.Error(t, err)

	assert.Equal(t, []string{"a"}, args.ran)
	assert.Equal(t, RunAborted, result.State)
	assert.Equal(t, StepFailed, result.Steps[1].State)
	assert.Equal(t, StepNotStarted, result.Steps[2].State)
	assert.Equal(t, "b", result.FailedStep().Name)
	assert.Contains(t, result.Steps[1].Error.Error(), "nil map")

	assert.True(t, errors.IsErrorCode(err, errors.ErrStepExecute))
	assert.Equal(t, "b", errors.GetErrorDetails(err)["step"])
	assert.Equal(t, []string{
		"start install site1",
		"step a map[]", "done a succeeded",
		"step b map[]", "done b failed",
		"finish aborted",
	}, hook.events)
}

func TestExecute_ShouldRunGating(t *testing.T) {
	skipped := recordStep("b").OnlyIf(func(a *testArgs) bool { return a.attach != "" })
	p := New[*testArgs]("delete", recordStep("a"), skipped, recordStep("c"))
	hook := &recordingHook{}

	args := &testArgs{name: "site1"}
	result, err := p.Execute(args, hook)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, args.ran)
	assert.Equal(t, StepSkipped, result.Steps[1].State)
	assert.Contains(t, hook.events, "done b skipped")
	assert.NotContains(t, hook.events, "step b map[]")
}

func TestExecute_StepSeesEarlierAttachments(t *testing.T) {
	attach := NewStep("setup", func(a *testArgs) error {
		a.attach = "instance-1"
		return nil
	})
	var seen string
	read := NewStep("grant", func(a *testArgs) error {
		seen = a.attach
		return nil
	}).OnlyIf(func(a *testArgs) bool { return a.attach != "" })

	_, err := New[*testArgs]("install", attach, read).Execute(&testArgs{name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "instance-1", seen)
}

func TestExecute_ValidationFailureRunsNoStep(t *testing.T) {
	p := New[*testArgs]("install", recordStep("a")).
		WithValidators(
			func(a *testArgs) error { return nil },
			func(a *testArgs) error { return stderrors.New("name is required") },
		)
	args := &testArgs{}

	result, err := p.Execute(args)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "name is required")
	assert.Empty(t, args.ran)
	assert.Equal(t, RunAborted, result.State)
	assert.Equal(t, StepNotStarted, result.Steps[0].State)
}

func TestExecute_CancellationStopsBeforeNextStep(t *testing.T) {
	p := New[*testArgs]("install", recordStep("a"), recordStep("b"), recordStep("c"))
	args := &testArgs{name: "site1", cancelAfter: "a"}

	result, err := p.Execute(args)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStepCancelled))
	assert.Equal(t, []string{"a"}, args.ran)
	assert.Equal(t, RunAborted, result.State)
	assert.Equal(t, StepSucceeded, result.Steps[0].State)
	assert.Equal(t, StepNotStarted, result.Steps[1].State)
	assert.Equal(t, "b", errors.GetErrorDetails(err)["step"])
}

type describedStep struct{ mock.Mock }

func (s *describedStep) Name() string { return "described" }
func (s *describedStep) ShouldRun(a *testArgs) bool {
	return s.Called(a).Bool(0)
}
func (s *describedStep) Run(a *testArgs) error {
	return s.Called(a).Error(0)
}
func (s *describedStep) Params(a *testArgs) map[string]string {
	return map[string]string{"site": a.name}
}
func (s *describedStep) Summary(a *testArgs) string { return "created " + a.name }

func TestExecute_ParamsAndSummary(t *testing.T) {
	step := &describedStep{}
	args := &testArgs{name: "site1"}
	step.On("ShouldRun", args).Return(true)
	step.On("Run", args).Return(nil)
	hook := &recordingHook{}

	result, err := New[*testArgs]("install", Step[*testArgs](step)).Execute(args, hook)
	require.NoError(t, err)
	step.AssertExpectations(t)

	assert.Equal(t, map[string]string{"site": "site1"}, result.Steps[0].Params)
	assert.Equal(t, "created site1", result.Steps[0].Summary)
	assert.Contains(t, hook.events, "step described map[site:site1]")
}

func TestRegistryAndRunner(t *testing.T) {
	install := New[*testArgs]("install", recordStep("a"))
	reg, err := NewRegistry(install, New[*testArgs]("delete", recordStep("d")))
	require.NoError(t, err)
	assert.Equal(t, []string{"install", "delete"}, reg.Names())

	err = reg.Register(New[*testArgs]("Install"))
	assert.True(t, errors.HasErrorCode(err, errors.ErrAlreadyExists))

	hook := &recordingHook{}
	runner := NewRunner(reg, Options{Hooks: []Hook{hook}, Logger: zerolog.Nop()})

	args := &testArgs{name: "site1"}
	result, err := runner.Run("INSTALL", args)
	require.NoError(t, err)
	assert.Equal(t, "install", result.Pipeline)
	assert.Equal(t, []string{"a"}, args.ran)

	result, err = runner.Run("missing", args)
	assert.Nil(t, result)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPipelineNotFound))
}

func TestLogHook(t *testing.T) {
	hook := NewLogHook(zerolog.New(zerolog.NewTestWriter(t)))
	p := New[*testArgs]("install", recordStep("a"), failingStep("b", stderrors.New("x")))
	_, err := p.Execute(&testArgs{name: "site1"}, hook)
	assert.Error(t, err)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "skipped", StepSkipped.String())
	assert.Equal(t, "failed", StepFailed.String())
	assert.Equal(t, "aborted", RunAborted.String())
	assert.Equal(t, "unknown", StepState(42).String())
}

func TestFuncStep_Summary(t *testing.T) {
	step := recordStep("a").
		WithParams(func(a *testArgs) map[string]string { return map[string]string{"name": a.name} }).
		WithSummary(func(a *testArgs) string { return "ran " + a.name })

	result, err := New[*testArgs]("p", step).Execute(&testArgs{name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ran x", result.Steps[0].Summary)
	assert.Equal(t, map[string]string{"name": "x"}, result.Steps[0].Params)
	assert.Equal(t, "", NewStep[*testArgs]("b", nil).Summary(&testArgs{}))
}
