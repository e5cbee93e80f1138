package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/kls/pkg/symbol"
	"github.com/macropower/kls/pkg/yaml"
)

// ListSymbolsParams defines parameters for the list_symbols tool.
type ListSymbolsParams struct {
	Text string `json:"text"`
	// Parent restricts the result to the direct children of the symbol
	// with this qualified name, or to top-level keys for "$".
	Parent string `json:"parent,omitempty"`
}

// ListSymbolsResult contains the symbols of a text.
type ListSymbolsResult struct {
	Message string          `json:"message"`
	Symbols []symbol.Symbol `json:"symbols"`
}

func listSymbolsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_symbols",
		Description: "List the keys and sequence items of a YAML text as symbols with qualified names (e.g. \"$.spec.replicas\") and zero-based ranges.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"text": textSchema(),
				"parent": {
					Type:        "string",
					Description: "Optional qualified name. Only direct children of this symbol are listed.",
				},
			},
			Required: []string{"text"},
		},
	}
}

// ListSymbols handles the list_symbols tool call.
func (s *Server) ListSymbols(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ListSymbolsParams],
) (*mcp.CallToolResultFor[ListSymbolsResult], error) {
	args := params.Arguments

	syms := symbol.Extract(yaml.Parse(args.Text))

	switch args.Parent {
	case "":
	case symbol.Root:
		syms = slices.DeleteFunc(syms, func(sym symbol.Symbol) bool {
			return sym.ContainerName != symbol.Root
		})
	default:
		parent, ok := symbol.Find(syms, args.Parent)
		if !ok {
			msg := fmt.Sprintf("No symbol named %q.", args.Parent)

			return &mcp.CallToolResultFor[ListSymbolsResult]{
				Content:           []mcp.Content{&mcp.TextContent{Text: msg}},
				StructuredContent: ListSymbolsResult{Message: msg, Symbols: []symbol.Symbol{}},
				IsError:           true,
			}, nil
		}

		syms = symbol.Children(syms, parent)
	}

	if syms == nil {
		syms = []symbol.Symbol{}
	}

	result := ListSymbolsResult{
		Symbols: syms,
		Message: fmt.Sprintf("Found %d symbol(s).", len(syms)),
	}

	return &mcp.CallToolResultFor[ListSymbolsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}
