package lint

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"

	"github.com/macropower/kls/pkg/symbol"
)

// Source is the source name attached to diagnostics.
const Source = "kls"

// Diagnostic is a problem found in a document.
type Diagnostic struct {
	Message  string       `json:"message"`
	Source   string       `json:"source,omitempty"`
	Rule     string       `json:"rule,omitempty"`
	Range    symbol.Range `json:"range"`
	Severity Severity     `json:"severity"`
}

// WarningOn returns a warning anchored at the range of s. The message is
// used as given.
func WarningOn[S symbol.Info](s S, text string) Diagnostic {
	return New(SeverityWarning, s, text)
}

// New returns a diagnostic with the given severity anchored at the range of s.
func New[S symbol.Info](severity Severity, s S, text string) Diagnostic {
	return Diagnostic{
		Range:    s.GetRange(),
		Message:  text,
		Severity: severity,
	}
}

func (d Diagnostic) String() string {
	if d.Rule != "" {
		return fmt.Sprintf("%s %s: %s (%s)", d.Range.Start, d.Severity, d.Message, d.Rule)
	}

	return fmt.Sprintf("%s %s: %s", d.Range.Start, d.Severity, d.Message)
}

// ToProtocol converts d into a Language Server Protocol diagnostic.
func ToProtocol(d Diagnostic) protocol.Diagnostic {
	source := d.Source
	if source == "" {
		source = Source
	}

	return protocol.Diagnostic{
		Range:    toProtocolRange(d.Range),
		Severity: protocol.DiagnosticSeverity(d.Severity), //nolint:gosec // G115: LSP severities are 1-4.
		Source:   source,
		Message:  d.Message,
	}
}

func toProtocolRange(r symbol.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}

func toProtocolPosition(p symbol.Position) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(p.Line, 0)),      //nolint:gosec // G115: clamped.
		Character: uint32(max(p.Character, 0)), //nolint:gosec // G115: clamped.
	}
}

// Sort orders diagnostics by start position, then severity, then message.
func Sort(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Range.Start.Line, b.Range.Start.Line),
			cmp.Compare(a.Range.Start.Character, b.Range.Start.Character),
			cmp.Compare(a.Severity, b.Severity),
			cmp.Compare(a.Message, b.Message),
		)
	})
}
