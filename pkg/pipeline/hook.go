package pipeline

import (
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/rs/zerolog"
)

// Hook observes pipeline execution. Hooks are called synchronously on the
// goroutine that runs the pipeline.
type Hook interface {
	PipelineStarted(pipeline, target string)
	StepStarted(pipeline, step string, params map[string]string)
	StepFinished(pipeline string, step StepResult)
	PipelineFinished(result *Result)
}

// LogHook reports execution through a zerolog logger.
type LogHook struct {
	logger zerolog.Logger
}

// NewLogHook returns a hook that logs to logger, or to the "pipeline"
// component logger when logger is disabled.
func NewLogHook(logger zerolog.Logger) *LogHook {
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("pipeline")
	}
	return &LogHook{logger: logger}
}

func (h *LogHook) PipelineStarted(pipeline, target string) {
	h.logger.Info().
		Str("pipeline", pipeline).
		Str("target", target).
		Msg("Pipeline started")
}

func (h *LogHook) StepStarted(pipeline, step string, params map[string]string) {
	event := h.logger.Debug().
		Str("pipeline", pipeline).
		Str("step", step)
	for k, v := range params {
		event = event.Str(k, v)
	}
	event.Msg("Step started")
}

func (h *LogHook) StepFinished(pipeline string, step StepResult) {
	var event *zerolog.Event
	switch step.State {
	case StepFailed:
		event = h.logger.Error().Err(step.Error)
	case StepSkipped:
		event = h.logger.Debug()
	default:
		event = h.logger.Info()
	}
	event.
		Str("pipeline", pipeline).
		Str("step", step.Name).
		Str("state", step.State.String()).
		Str("summary", step.Summary).
		Dur("duration", step.Duration).
		Msg("Step finished")
}

func (h *LogHook) PipelineFinished(result *Result) {
	event := h.logger.Info()
	if result.State != RunCompleted {
		event = h.logger.Warn().Err(result.Error)
	}
	event.
		Str("pipeline", result.Pipeline).
		Str("target", result.Target).
		Str("state", result.State.String()).
		Int("succeeded", result.Count(StepSucceeded)).
		Int("skipped", result.Count(StepSkipped)).
		Int("failed", result.Count(StepFailed)).
		Dur("duration", result.Duration).
		Msg("Pipeline finished")
}
