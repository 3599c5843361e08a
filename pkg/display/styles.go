package display

import (
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	InfoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
)

// styles are bound to one lipgloss renderer so color decisions follow the
// writer they print to.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(HeadingColor).Bold(true),
		muted:   r.NewStyle().Foreground(MutedColor),
		success: r.NewStyle().Foreground(SuccessColor).Bold(true),
		failure: r.NewStyle().Foreground(ErrorColor).Bold(true),
		warning: r.NewStyle().Foreground(WarningColor).Bold(true),
		info:    r.NewStyle().Foreground(InfoColor),
	}
}

// indicator returns the marker printed before a finished step.
func (s styles) indicator(state pipeline.StepState) string {
	switch state {
	case pipeline.StepSucceeded:
		return s.success.Render("✓")
	case pipeline.StepFailed:
		return s.failure.Render("✗")
	case pipeline.StepSkipped:
		return s.muted.Render("○")
	case pipeline.StepRunning:
		return s.info.Render("⟳")
	default:
		return s.muted.Render("·")
	}
}

// StateStyle returns the pterm style for a step state in tables
func StateStyle(state pipeline.StepState) *pterm.Style {
	switch state {
	case pipeline.StepSucceeded:
		return pterm.NewStyle(pterm.FgGreen)
	case pipeline.StepFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case pipeline.StepRunning:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}
