package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/lint"
)

// LintParams defines parameters for the lint tool.
type LintParams struct {
	Text string `json:"text"`
	File string `json:"file,omitempty"`
}

// LintResult contains the diagnostics of a lint pass.
type LintResult struct {
	Error       string                  `json:"error,omitempty"`
	Message     string                  `json:"message"`
	Diagnostics []lint.Diagnostic       `json:"diagnostics"`
	Resources   []kube.ResourceMetadata `json:"resources,omitempty"`
	Manifest    bool                    `json:"manifest"`
}

func lintTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lint",
		Description: "Lint a Kubernetes manifest. Texts that are not manifests produce no diagnostics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"text": textSchema(),
				"file": {
					Type:        "string",
					Description: "Optional path of the file the text was read from, available to custom rules.",
				},
			},
			Required: []string{"text"},
		},
	}
}

// Lint handles the lint tool call. Linter failures are reported in the
// result alongside the diagnostics that could be produced.
func (s *Server) Lint(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[LintParams],
) (*mcp.CallToolResultFor[LintResult], error) {
	args := params.Arguments

	res, err := lint.LintFile(ctx, args.File, args.Text, s.linters...)
	if res == nil {
		return nil, fmt.Errorf("lint: %w", err)
	}

	result := LintResult{
		Manifest:    res.Manifest,
		Diagnostics: res.Diagnostics,
		Resources:   res.Resources,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []lint.Diagnostic{}
	}

	if err != nil {
		result.Error = err.Error()
	}

	var b strings.Builder

	if len(res.Resources) > 0 {
		names := make([]string, 0, len(res.Resources))
		for _, m := range res.Resources {
			names = append(names, m.String())
		}

		fmt.Fprintf(&b, "Resources: %s.\n", strings.Join(names, ", "))
	}

	switch {
	case !res.Manifest:
		b.WriteString("The text is not a Kubernetes manifest.")
	case len(res.Diagnostics) == 0:
		b.WriteString("No problems found.")
	default:
		fmt.Fprintf(&b, "Found %s:", english.Plural(len(res.Diagnostics), "problem", ""))

		for _, d := range res.Diagnostics {
			b.WriteString("\n" + d.String())
		}
	}

	result.Message = b.String()

	return &mcp.CallToolResultFor[LintResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}
