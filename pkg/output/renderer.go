package output

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/output/styles"
	"github.com/devcraft/storekeep/pkg/patterns"
	"github.com/devcraft/storekeep/pkg/provision"
	"github.com/devcraft/storekeep/pkg/status"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer writes command results in one output format.
type Renderer struct {
	templates *template.Template
	writer    io.Writer
	format    Format
}

// NewRenderer creates a Renderer. FormatAuto is treated as FormatText; callers
// that write to a terminal should resolve it first with Format.Resolve.
func NewRenderer(w io.Writer, format Format) (*Renderer, error) {
	if format == FormatAuto {
		format = FormatText
	}
	logger := logging.GetLogger("output")
	logger.Debug().Str("format", format.String()).Msg("Creating renderer")

	r := &Renderer{writer: w, format: format}
	tmpl, err := template.New("output").Funcs(r.funcs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

type cleanView struct {
	*types.CleanResult
	Title   string
	Restore bool
}

// RenderClean writes the outcome of a cleaning run.
func (r *Renderer) RenderClean(result *types.CleanResult) error {
	if r.format.IsStructured() {
		return r.encode(result)
	}
	title := "Cleaning"
	if result.DryRun {
		title = "Dry run"
	}
	return r.execute("clean.tmpl", cleanView{CleanResult: result, Title: title})
}

// RenderRestore writes the outcome of a restore.
func (r *Renderer) RenderRestore(result *types.CleanResult) error {
	if r.format.IsStructured() {
		return r.encode(result)
	}
	return r.execute("clean.tmpl", cleanView{CleanResult: result, Title: "Restore", Restore: true})
}

// RenderStatus writes a status report.
func (r *Renderer) RenderStatus(report *status.Report) error {
	if r.format.IsStructured() {
		return r.encode(report)
	}
	return r.execute("status.tmpl", report)
}

// RenderSetup writes the outcome of a setup run.
func (r *Renderer) RenderSetup(report *provision.Report) error {
	if r.format.IsStructured() {
		return r.encode(report)
	}
	return r.execute("setup.tmpl", report)
}

// RenderLocations writes the resolved application locations.
func (r *Renderer) RenderLocations(loc types.Locations) error {
	if r.format.IsStructured() {
		return r.encode(loc)
	}
	return r.execute("locations.tmpl", loc)
}

// RenderLedger writes the ledger document.
func (r *Renderer) RenderLedger(path string, state ledger.State) error {
	if r.format.IsStructured() {
		return r.encode(state)
	}
	return r.execute("ledger.tmpl", struct {
		Path string
		ledger.State
	}{Path: path, State: state})
}

// RenderPatterns writes the pattern catalog, or how it treats each of keys.
func (r *Renderer) RenderPatterns(set patterns.Set, verdicts []patterns.Verdict) error {
	if r.format.IsStructured() {
		if len(verdicts) > 0 {
			return r.encode(verdicts)
		}
		return r.encode(set)
	}

	tw := r.newTable()
	if len(verdicts) > 0 {
		tw.AppendHeader(table.Row{"Key", "Smart", "Deep", "Protected"})
		for _, v := range verdicts {
			tw.AppendRow(table.Row{v.Key, yesNo(v.Smart), yesNo(v.Deep), yesNo(v.Protected)})
		}
	} else {
		tw.AppendHeader(table.Row{"List", "Used by", "Pattern"})
		appendList := func(name, usedBy string, list []string) {
			for _, p := range list {
				tw.AppendRow(table.Row{name, usedBy, p})
			}
		}
		appendList("restriction", "smart", set.Restriction)
		appendList("deep", "deep", set.Deep)
		appendList("protected", "deep with protection", set.Protected)
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
	}
	_, err := fmt.Fprintln(r.writer, tw.Render())
	return err
}

// RenderData writes v as JSON or YAML, or as its default text form.
func (r *Renderer) RenderData(v interface{}) error {
	if r.format.IsStructured() {
		return r.encode(v)
	}
	_, err := fmt.Fprintln(r.writer, v)
	return err
}

// RenderError renders an error message with appropriate styling
func (r *Renderer) RenderError(err error) error {
	if r.format.IsStructured() {
		return r.encode(map[string]interface{}{
			"error":   err.Error(),
			"code":    errors.GetErrorCode(err),
			"details": errors.GetErrorDetails(err),
		})
	}
	_, writeErr := fmt.Fprintf(r.writer, "%s %s\n", r.style("Error", "Error:"), err.Error())
	return writeErr
}

// RenderMessage renders a simple message with optional styling
func (r *Renderer) RenderMessage(style, message string) error {
	if r.format.IsStructured() {
		return r.encode(map[string]string{"message": message})
	}
	_, err := fmt.Fprintln(r.writer, r.style(style, message))
	return err
}

func (r *Renderer) execute(name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	_, err := r.writer.Write(buf.Bytes())
	return err
}

func (r *Renderer) encode(v interface{}) error {
	switch r.format {
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

func (r *Renderer) style(name, s string) string {
	if r.format != FormatTerminal {
		return s
	}
	return styles.GetStyle(name).Render(s)
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"style":      r.style,
		"storeTable": r.storeTable,
		"when":       formatTime,
		"yesno":      yesNo,
		"join":       strings.Join,
		"duration":   formatDuration,
		"tiers":      tierNames,
	}
}

func (r *Renderer) newTable() table.Writer {
	tw := table.NewWriter()
	if r.format == FormatTerminal {
		tw.SetStyle(table.StyleLight)
		tw.Style().Color.Header = text.Colors{text.Bold}
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	return tw
}

// storeTable draws the per-store breakdown.
func (r *Renderer) storeTable(v cleanView) string {
	tw := r.newTable()
	if v.Restore {
		tw.AppendHeader(table.Row{"Store", "Kind", "Status", "Restored from"})
	} else {
		tw.AppendHeader(table.Row{"Store", "Kind", "Status", "Rows", "Skipped", "Backup"})
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	}
	for _, s := range v.Stores {
		backup := ""
		if s.Backup != nil && !s.Backup.NoOp {
			backup = s.Backup.Path
		}
		if v.Restore {
			tw.AppendRow(table.Row{s.ID, s.Kind, restoreStatus(s), backup})
			continue
		}
		tw.AppendRow(table.Row{
			s.ID, s.Kind, storeStatus(s, v.DryRun), s.RowsDeleted,
			strings.Join(s.PatternsSkipped, ", "), backup,
		})
	}
	return tw.Render()
}

func storeStatus(s types.StoreOutcome, dryRun bool) string {
	switch {
	case s.Error != "":
		return "failed"
	case !s.Existed:
		return "missing"
	case dryRun:
		return "preview"
	case s.Removed:
		return "removed"
	case s.Processed:
		return "cleaned"
	}
	return "skipped"
}

func restoreStatus(s types.StoreOutcome) string {
	switch {
	case s.Error != "":
		return "failed"
	case !s.Existed:
		return "no backup"
	case s.Processed:
		return "restored"
	}
	return "skipped"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func tierNames() []string {
	names := make([]string, 0, len(types.AllTiers))
	for _, t := range types.AllTiers {
		names = append(names, t.String())
	}
	return names
}
