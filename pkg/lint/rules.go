package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/macropower/kls/pkg/rule"
	"github.com/macropower/kls/pkg/symbol"
)

// NameRules is the name of the [Rules] linter.
const NameRules = "rules"

// Rules evaluates custom CEL rules against each decoded manifest.
// Rules named in a disabled list are filtered by the caller.
type Rules struct {
	Rules []*rule.Rule
}

func (Rules) Name() string { return NameRules }

func (l Rules) Lint(ctx context.Context, in *Input) ([]Diagnostic, error) {
	var (
		diags []Diagnostic
		errs  []error
	)

	for _, res := range in.Resources {
		if res.Object == nil {
			continue
		}

		syms := in.DocumentSymbols(res.Document)
		input := rule.Input{
			Object:     res.Object,
			APIVersion: res.Identity.APIVersion,
			Kind:       res.Identity.Kind,
			Source:     res.Document.Root.Raw,
			File:       in.File,
		}

		for _, r := range l.Rules {
			if err := ctx.Err(); err != nil {
				return diags, fmt.Errorf("evaluate rules: %w", err)
			}

			violated, err := r.Evaluate(input)
			if err != nil {
				errs = append(errs, err)

				continue
			}

			if !violated {
				continue
			}

			severity, err := ParseSeverity(r.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %q: %w", r.Name, err))
				severity = SeverityWarning
			}

			var d Diagnostic

			if anchor, ok := anchorFor(syms, r.GetPath()); ok {
				d = New(severity, anchor, r.GetMessage())
			} else {
				d = Diagnostic{
					Range:    in.Range(res.Document.Root.Start, res.Document.Root.End),
					Message:  r.GetMessage(),
					Severity: severity,
				}
			}

			d.Rule = r.Name
			diags = append(diags, d)
		}
	}

	return diags, errors.Join(errs...)
}

// anchorFor returns the symbol with the given qualified name, or the first
// symbol of the document.
func anchorFor(syms []symbol.Symbol, path string) (symbol.Symbol, bool) {
	if s, ok := symbol.Find(syms, path); ok {
		return s, true
	}

	if len(syms) > 0 {
		return syms[0], true
	}

	return symbol.Symbol{}, false
}
