package display

import (
	"github.com/arthur-debert/simctl/pkg/pipeline"
)

// ProgressHook prints one line per finished step while a pipeline runs.
// JSON printers stay silent until the final report.
type ProgressHook struct {
	p *Printer
}

var _ pipeline.Hook = (*ProgressHook)(nil)

// Progress returns a hook printing step progress through p.
func (p *Printer) Progress() *ProgressHook {
	return &ProgressHook{p: p}
}

func (h *ProgressHook) quiet() bool { return h.p.format == FormatJSON }

func (h *ProgressHook) PipelineStarted(name, target string) {
	if h.quiet() {
		return
	}
	h.p.Title(name + " " + target)
}

func (h *ProgressHook) StepStarted(string, string, map[string]string) {}

func (h *ProgressHook) StepFinished(_ string, step pipeline.StepResult) {
	if h.quiet() {
		return
	}
	line := "  " + h.p.styles.indicator(step.State) + " " + step.Name
	if params := sortedParams(step.Params); params != "" && step.State != pipeline.StepSkipped {
		line += " " + h.p.styles.muted.Render(params)
	}
	switch {
	case step.State == pipeline.StepFailed && step.Error != nil:
		line += ": " + h.p.styles.failure.Render(step.Error.Error())
	case step.State == pipeline.StepSkipped:
		line += " " + h.p.styles.muted.Render("(skipped)")
	case step.Summary != "":
		line += ": " + step.Summary
	}
	h.p.println(line)
}

func (h *ProgressHook) PipelineFinished(*pipeline.Result) {}
