package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/arthur-debert/simctl/pkg/runtimeconfig"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Printer writes command output in one format.
type Printer struct {
	w      io.Writer
	format Format
	styles styles
}

// NewPrinter creates a printer for w. FormatAuto is resolved against w.
func NewPrinter(w io.Writer, format Format) *Printer {
	format = format.Resolve(w)
	r := lipgloss.NewRenderer(w)
	if format != FormatTerminal {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, format: format, styles: newStyles(r)}
}

// Format is the resolved output format.
func (p *Printer) Format() Format { return p.format }

// Writer is the underlying output.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) styled() bool { return p.format == FormatTerminal }

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// Title prints a heading.
func (p *Printer) Title(s string) {
	if p.format == FormatJSON {
		return
	}
	p.println(p.styles.title.Render(s))
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...interface{}) {
	if p.format == FormatJSON {
		return
	}
	p.println(p.styles.success.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...interface{}) {
	if p.format == FormatJSON {
		return
	}
	p.println(p.styles.warning.Render("!") + " " + fmt.Sprintf(format, args...))
}

// Error prints err; JSON output carries its code and details separately.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	if p.format == FormatJSON {
		_ = p.JSON(map[string]interface{}{
			"error":   err.Error(),
			"code":    string(errors.GetErrorCode(err)),
			"details": errors.GetErrorDetails(err),
		})
		return
	}
	p.println(p.styles.failure.Render("Error:") + " " + err.Error())
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) table(data pterm.TableData) error {
	t := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !p.styled() {
		t = t.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	out, err := t.Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render table")
	}
	p.println(out)
	return nil
}

func (p *Printer) cell(style *pterm.Style, s string) string {
	if !p.styled() {
		return s
	}
	return style.Sprint(s)
}

type productView struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Revision   string `json:"revision,omitempty"`
	Label      string `json:"label,omitempty"`
	Standalone bool   `json:"standalone"`
	Archive    string `json:"archive,omitempty"`
}

func viewOf(pr product.Product) productView {
	return productView{
		Name:       pr.Name,
		Version:    pr.Version,
		Revision:   pr.Revision,
		Label:      pr.Label,
		Standalone: pr.IsStandalone,
		Archive:    pr.ArchivePath,
	}
}

// Products prints a product listing.
func (p *Printer) Products(products []product.Product) error {
	if p.format == FormatJSON {
		views := make([]productView, 0, len(products))
		for _, pr := range products {
			views = append(views, viewOf(pr))
		}
		return p.JSON(views)
	}
	if len(products) == 0 {
		p.println(p.styles.muted.Render("No products found"))
		return nil
	}
	data := pterm.TableData{{"Product", "Version", "Revision", "Kind", "Archive"}}
	for _, pr := range products {
		kind := "module"
		if pr.IsStandalone {
			kind = "standalone"
		}
		data = append(data, []string{pr.Name, pr.Version, pr.Revision, kind, pr.ArchivePath})
	}
	return p.table(data)
}

// Product prints one product with the modules compatible with it.
func (p *Printer) Product(pr product.Product, modules []product.Product) error {
	if p.format == FormatJSON {
		views := make([]productView, 0, len(modules))
		for _, m := range modules {
			views = append(views, viewOf(m))
		}
		return p.JSON(map[string]interface{}{"product": viewOf(pr), "modules": views})
	}
	p.Title(pr.String())
	fields := [][2]string{
		{"Name", pr.Name},
		{"Version", pr.Version},
		{"Revision", pr.Revision},
		{"Label", pr.Label},
		{"Archive", pr.ArchivePath},
	}
	for _, f := range fields {
		if f[1] != "" {
			p.println(fmt.Sprintf("  %-9s %s", f[0]+":", f[1]))
		}
	}
	if pr.IsStandalone && len(modules) > 0 {
		p.println("")
		p.println(p.styles.title.Render("Compatible modules"))
		return p.Products(modules)
	}
	return nil
}

type stepView struct {
	Name     string            `json:"name"`
	State    string            `json:"state"`
	Params   map[string]string `json:"params,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
	Duration string            `json:"duration"`
}

// Result prints a step report for a finished run.
func (p *Printer) Result(result *pipeline.Result) error {
	if result == nil {
		return nil
	}
	if p.format == FormatJSON {
		steps := make([]stepView, 0, len(result.Steps))
		for _, s := range result.Steps {
			v := stepView{Name: s.Name, State: s.State.String(), Params: s.Params, Summary: s.Summary, Duration: s.Duration.String()}
			if s.Error != nil {
				v.Error = s.Error.Error()
			}
			steps = append(steps, v)
		}
		out := map[string]interface{}{
			"pipeline": result.Pipeline,
			"target":   result.Target,
			"state":    result.State.String(),
			"steps":    steps,
			"duration": result.Duration.String(),
		}
		if result.Error != nil {
			out["error"] = result.Error.Error()
		}
		return p.JSON(out)
	}

	data := pterm.TableData{{"Step", "State", "Duration", "Details"}}
	for _, s := range result.Steps {
		details := s.Summary
		if s.Error != nil {
			details = s.Error.Error()
		}
		data = append(data, []string{
			s.Name,
			p.cell(StateStyle(s.State), s.State.String()),
			formatDuration(s.Duration),
			details,
		})
	}
	if err := p.table(data); err != nil {
		return err
	}
	p.Outcome(result)
	return nil
}

// Outcome prints the one-line verdict of a finished run.
func (p *Printer) Outcome(result *pipeline.Result) {
	if result == nil || p.format == FormatJSON {
		return
	}
	p.println(fmt.Sprintf("%s %s %s: %d succeeded, %d skipped in %s",
		p.styles.indicator(finalState(result)), result.Pipeline, result.State,
		result.Count(pipeline.StepSucceeded), result.Count(pipeline.StepSkipped), formatDuration(result.Duration)))
}

// Instances prints provisioned sites.
func (p *Printer) Instances(instances []lifecycle.Instance) error {
	if p.format == FormatJSON {
		return p.JSON(instances)
	}
	if len(instances) == 0 {
		p.println(p.styles.muted.Render("No instances"))
		return nil
	}
	data := pterm.TableData{{"Name", "State", "Hosts", "Root", "App pool"}}
	for _, inst := range instances {
		data = append(data, []string{
			inst.Name, string(inst.State), strings.Join(inst.HostNames, ","), inst.RootPath, inst.AppPool.Name,
		})
	}
	return p.table(data)
}

// Databases prints the connection strings of an instance.
func (p *Printer) Databases(dbs []runtimeconfig.Database) error {
	if p.format == FormatJSON {
		return p.JSON(dbs)
	}
	if len(dbs) == 0 {
		p.println(p.styles.muted.Render("No connection strings"))
		return nil
	}
	data := pterm.TableData{{"Name", "Kind", "Connection string"}}
	for _, db := range dbs {
		kind := "sql"
		if db.Mongo {
			kind = "mongo"
		}
		data = append(data, []string{db.Name, kind, db.ConnectionString})
	}
	return p.table(data)
}

func finalState(result *pipeline.Result) pipeline.StepState {
	if result.Succeeded() {
		return pipeline.StepSucceeded
	}
	return pipeline.StepFailed
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return d.Round(time.Millisecond).String()
}

func sortedParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, " ")
}
