package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"

	"github.com/macropower/kls/pkg/lint"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

// AllOutputs lists the supported lint output formats.
var AllOutputs = []string{OutputText, OutputJSON}

// summary counts diagnostics by severity.
type summary struct {
	Files    int `json:"files"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Other    int `json:"other"`
}

func summarize(results []*lint.Result) summary {
	var s summary

	for _, res := range results {
		s.Files++

		for _, d := range res.Diagnostics {
			switch d.Severity {
			case lint.SeverityError:
				s.Errors++
			case lint.SeverityWarning:
				s.Warnings++
			default:
				s.Other++
			}
		}
	}

	return s
}

func (s summary) Problems() int {
	return s.Errors + s.Warnings + s.Other
}

func (s summary) String() string {
	return fmt.Sprintf("%s (%s, %s) in %s",
		english.Plural(s.Problems(), "problem", ""),
		english.Plural(s.Errors, "error", ""),
		english.Plural(s.Warnings, "warning", ""),
		english.Plural(s.Files, "file", ""),
	)
}

// textRenderer renders lint results for terminals.
type textRenderer struct {
	file     lipgloss.Style
	position lipgloss.Style
	rule     lipgloss.Style
	ok       lipgloss.Style
	severity map[lint.Severity]lipgloss.Style
	w        io.Writer
}

func newTextRenderer(w io.Writer) *textRenderer {
	r := lipgloss.NewRenderer(w)

	return &textRenderer{
		w:        w,
		file:     r.NewStyle().Bold(true).Underline(true),
		position: r.NewStyle().Faint(true),
		rule:     r.NewStyle().Faint(true),
		ok:       r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		severity: map[lint.Severity]lipgloss.Style{
			lint.SeverityError:       r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			lint.SeverityWarning:     r.NewStyle().Foreground(lipgloss.Color("3")),
			lint.SeverityInformation: r.NewStyle().Foreground(lipgloss.Color("4")),
			lint.SeverityHint:        r.NewStyle().Faint(true),
		},
	}
}

// Result writes the diagnostics of one file. Files without diagnostics are
// skipped.
func (tr *textRenderer) Result(res *lint.Result) error {
	if len(res.Diagnostics) == 0 {
		return nil
	}

	positions := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		positions[i] = d.Range.Start.String()
	}

	width := len(slices.MaxFunc(positions, func(a, b string) int { return len(a) - len(b) }))

	var b strings.Builder

	b.WriteString(tr.file.Render(res.File) + "\n")

	for i, d := range res.Diagnostics {
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			tr.position.Render(fmt.Sprintf("%-*s", width, positions[i])),
			tr.severity[d.Severity].Render(fmt.Sprintf("%-11s", d.Severity)),
			d.Message,
			tr.rule.Render(d.Rule),
		)
	}

	b.WriteString("\n")

	_, err := io.WriteString(tr.w, b.String())
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

// Summary writes the totals of all results.
func (tr *textRenderer) Summary(results []*lint.Result) error {
	s := summarize(results)

	var line string
	if s.Problems() == 0 {
		line = tr.ok.Render("✔ no problems") + " in " + english.Plural(s.Files, "file", "")
	} else {
		line = tr.severity[lint.SeverityError].Render("✖ " + s.String())
	}

	_, err := fmt.Fprintln(tr.w, line)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// jsonReport is the document written by --output json.
type jsonReport struct {
	Results []*lint.Result `json:"results"`
	Summary summary        `json:"summary"`
}

func writeJSON(w io.Writer, results []*lint.Result) error {
	if results == nil {
		results = []*lint.Result{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(jsonReport{Results: results, Summary: summarize(results)})
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}
