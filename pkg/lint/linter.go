package lint

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/symbol"
	"github.com/macropower/kls/pkg/yaml"
)

// Linter checks the manifests of an [Input].
type Linter interface {
	Name() string
	Lint(ctx context.Context, in *Input) ([]Diagnostic, error)
}

// Input is a parsed text, shared by all linters of a lint pass.
// Linters must not modify it.
type Input struct {
	Lines     yaml.Lines
	Text      string
	File      string
	Documents []*yaml.Document
	Symbols   []symbol.Symbol
	Resources []*kube.Resource
}

// NewInput parses text into an [Input].
func NewInput(file, text string) *Input {
	docs, lines := yaml.Parse(text)

	return &Input{
		File:      file,
		Text:      text,
		Documents: docs,
		Lines:     lines,
		Symbols:   symbol.Extract(docs, lines),
		Resources: kube.Resources(docs),
	}
}

// DocumentSymbols returns the symbols of the given document.
func (in *Input) DocumentSymbols(doc *yaml.Document) []symbol.Symbol {
	idx := slices.Index(in.Documents, doc)
	if idx < 0 {
		return nil
	}

	var out []symbol.Symbol

	for _, s := range in.Symbols {
		if s.Document == idx {
			out = append(out, s)
		}
	}

	return out
}

// Range converts a byte range of the text into a [symbol.Range].
func (in *Input) Range(start, end int) symbol.Range {
	sl, sc := in.Lines.Position(start)
	el, ec := in.Lines.Position(end)

	return symbol.Range{
		Start: symbol.Position{Line: sl, Character: sc},
		End:   symbol.Position{Line: el, Character: ec},
	}
}

// Result is the outcome of a lint pass.
type Result struct {
	File        string       `json:"file,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	// Resources identifies the decoded manifests, in document order.
	Resources []kube.ResourceMetadata `json:"resources,omitempty"`
	// Manifest is false when the text was skipped as a non-manifest.
	Manifest bool `json:"manifest"`
}

// Lint runs linters over text. Text that does not look like a Kubernetes
// manifest produces an empty result. Syntax problems are reported as errors
// alongside the linters' diagnostics, sorted by position.
//
// A failing linter does not stop the others; their errors are joined.
func Lint(ctx context.Context, text string, linters ...Linter) (*Result, error) {
	return LintFile(ctx, "", text, linters...)
}

// LintFile is like [Lint] but records the file the text was read from.
func LintFile(ctx context.Context, file, text string, linters ...Linter) (*Result, error) {
	res := &Result{File: file, Diagnostics: []Diagnostic{}}
	if !kube.IsManifest(text) {
		return res, nil
	}

	res.Manifest = true
	in := NewInput(file, text)

	for _, r := range in.Resources {
		if r.Object != nil {
			res.Resources = append(res.Resources, r.Object.GetMetadata())
		}
	}

	for _, doc := range in.Documents {
		for _, p := range doc.Problems {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Range:    in.Range(p.Start, p.End),
				Message:  p.Message,
				Severity: SeverityError,
				Source:   Source,
				Rule:     "syntax",
			})
		}
	}

	var errs []error

	for _, l := range linters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lint: %w", err)
		}

		diags, err := l.Lint(ctx, in)
		if err != nil {
			errs = append(errs, fmt.Errorf("linter %q: %w", l.Name(), err))
		}

		for _, d := range diags {
			if d.Rule == "" {
				d.Rule = l.Name()
			}

			if d.Source == "" {
				d.Source = Source
			}

			res.Diagnostics = append(res.Diagnostics, d)
		}
	}

	Sort(res.Diagnostics)

	return res, errors.Join(errs...)
}

// Filter returns the linters whose names are not in disabled.
func Filter(linters []Linter, disabled []string) []Linter {
	out := make([]Linter, 0, len(linters))
	for _, l := range linters {
		if !slices.Contains(disabled, l.Name()) {
			out = append(out, l)
		}
	}

	return out
}
