// Package report renders run progress for people (text) and tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/fjglira/filecheck/internal/domain"
	"github.com/fjglira/filecheck/internal/runner"
	"github.com/fjglira/filecheck/internal/spec"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options controls what a Reporter prints.
type Options struct {
	Format string
	// Verbosity 0 prints one line per specification, 1 adds a preview of
	// the errors, 2 prints every error and the captured setup output.
	Verbosity    int
	PreviewLimit int
	// Interactive enables colors and the setup spinner.
	Interactive bool
	// Width wraps long messages; zero disables wrapping.
	Width int
}

// Reporter implements runner.Observer.
type Reporter struct {
	out     io.Writer
	opts    Options
	paint   painter
	tmpl    *template.Template
	spinner *setupSpinner
	results []jsonResult
}

var _ runner.Observer = (*Reporter)(nil)

// New creates a Reporter writing to out.
func New(out io.Writer, opts Options) (*Reporter, error) {
	switch opts.Format {
	case "":
		opts.Format = FormatText
	case FormatText, FormatJSON:
	default:
		return nil, domain.NewError("config", "", 0, fmt.Sprintf("unknown output format %q", opts.Format), nil)
	}

	r := &Reporter{
		out:   out,
		opts:  opts,
		paint: painter{enabled: opts.Interactive},
	}
	r.spinner = newSetupSpinner(opts.Interactive && opts.Format == FormatText, out)

	tmpl, err := template.New("result").Funcs(r.funcMap()).Parse(resultTemplate)
	if err != nil {
		return nil, domain.NewError("template", "", 0, "failed to parse result template", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Reporter) text() bool {
	return r.opts.Format == FormatText
}

// FileStarted prints the test file header at verbosity 1 and above.
func (r *Reporter) FileStarted(path string) {
	if r.text() && r.opts.Verbosity >= 1 {
		fmt.Fprintln(r.out, r.paint.paint(dimStyle, "== "+path))
	}
}

func (r *Reporter) SpecStarted(spec.Specification) {}

// SetupStarted starts the spinner.
func (r *Reporter) SetupStarted(s spec.Specification, command string) {
	if r.text() {
		r.spinner.Start(fmt.Sprintf("setup for %s: %s", spec.DisplayName(s), command))
	}
}

// SetupFinished stops the spinner.
func (r *Reporter) SetupFinished(spec.Specification, runner.SetupOutput) {
	if r.text() {
		r.spinner.Stop()
	}
}

// SpecFinished prints or records one result.
func (r *Reporter) SpecFinished(res runner.Result) {
	if !r.text() {
		r.results = append(r.results, newJSONResult(res))
		return
	}
	if err := r.tmpl.Execute(r.out, r.view(res)); err != nil {
		fmt.Fprintf(r.out, "%s %s: %v\n", r.status(res), spec.DisplayName(res.Spec), err)
	}
}

// RunFinished prints the run summary, or the whole JSON document.
func (r *Reporter) RunFinished(summary runner.Summary) {
	if !r.text() {
		doc := jsonReport{
			Summary: jsonSummary{Passed: summary.Passed, Failed: summary.Failed, Total: summary.Total()},
			Results: r.results,
		}
		if doc.Results == nil {
			doc.Results = []jsonResult{}
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(doc)
		r.results = nil
		return
	}

	line := fmt.Sprintf("%d passed, %d failed, %d total", summary.Passed, summary.Failed, summary.Total())
	if summary.OK() {
		fmt.Fprintln(r.out, r.paint.paint(passStyle, "PASS")+" "+line)
	} else {
		fmt.Fprintln(r.out, r.paint.paint(failStyle, "FAIL")+" "+line)
	}
}

// resultView is the data passed to resultTemplate.
type resultView struct {
	Status   string
	Name     string
	Duration string
	Shown    []string
	Hidden   int
	Setup    *runner.SetupOutput
}

const resultTemplate = `{{.Status}} {{.Name}}{{if .Duration}} {{dim .Duration}}{{end}}
{{range .Shown}}{{indent 4 (wrap .)}}
{{end}}{{if .Hidden}}{{hint (printf "    ... %d more error(s), rerun with -v 2 to see all" .Hidden)}}
{{end}}{{with .Setup}}{{if .Stdout}}    setup stdout:
{{indent 6 .Stdout}}{{if not (hasSuffix .Stdout "\n")}}
{{end}}{{end}}{{if .Stderr}}    setup stderr:
{{indent 6 .Stderr}}{{if not (hasSuffix .Stderr "\n")}}
{{end}}{{end}}{{end}}`

func (r *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"indent":    indent,
		"hasSuffix": strings.HasSuffix,
		"wrap": func(s string) string {
			return wrapText(r.opts.Width, s)
		},
		"dim": func(s string) string {
			return r.paint.paint(dimStyle, s)
		},
		"hint": func(s string) string {
			return r.paint.paint(hintStyle, s)
		},
	}
}

func (r *Reporter) status(res runner.Result) string {
	if res.Passed() {
		return r.paint.paint(passStyle, "PASS")
	}
	return r.paint.paint(failStyle, "FAIL")
}

func (r *Reporter) view(res runner.Result) resultView {
	v := resultView{
		Status: r.status(res),
		Name:   r.paint.paint(nameStyle, spec.DisplayName(res.Spec)),
	}
	if r.opts.Verbosity >= 1 {
		v.Duration = "(" + res.Duration.Round(time.Millisecond).String() + ")"
	}

	limit := 0
	switch {
	case r.opts.Verbosity >= 2:
		limit = len(res.Errors)
	case r.opts.Verbosity == 1:
		limit = min(r.opts.PreviewLimit, len(res.Errors))
	}
	for _, e := range res.Errors[:limit] {
		v.Shown = append(v.Shown, e.FullDescription())
	}
	if r.opts.Verbosity == 1 {
		v.Hidden = len(res.Errors) - limit
	}
	if r.opts.Verbosity >= 2 {
		v.Setup = res.Setup
	}
	return v
}

type jsonReport struct {
	Summary jsonSummary  `json:"summary"`
	Results []jsonResult `json:"results"`
}

type jsonSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

type jsonResult struct {
	Name       string      `json:"name"`
	ConfigFile string      `json:"config_file,omitempty"`
	Kind       spec.Kind   `json:"kind"`
	Outcome    string      `json:"outcome"`
	State      string      `json:"state"`
	Compared   int         `json:"compared"`
	DurationMS int64       `json:"duration_ms"`
	Errors     []jsonError `json:"errors"`
	Setup      *jsonSetup  `json:"setup,omitempty"`
}

type jsonError struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type jsonSetup struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

func newJSONResult(res runner.Result) jsonResult {
	out := jsonResult{
		Outcome:    string(res.Outcome),
		State:      string(res.State),
		Compared:   res.Compared,
		DurationMS: res.Duration.Milliseconds(),
		Errors:     make([]jsonError, 0, len(res.Errors)),
	}
	if res.Spec != nil {
		out.Name = spec.DisplayName(res.Spec)
		out.ConfigFile = res.Spec.Head().ConfigFile
		out.Kind = res.Spec.Kind()
	}
	for _, e := range res.Errors {
		je := jsonError{Message: e.Message}
		if !e.Location.IsZero() {
			je.Location = e.Location.String()
		}
		out.Errors = append(out.Errors, je)
	}
	if res.Setup != nil {
		out.Setup = &jsonSetup{
			Command:  res.Setup.Command,
			ExitCode: res.Setup.ExitCode,
			Stdout:   res.Setup.Stdout,
			Stderr:   res.Setup.Stderr,
		}
	}
	return out
}
