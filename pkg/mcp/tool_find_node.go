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

// FindNodeParams defines parameters for the find_node tool.
type FindNodeParams struct {
	Text      string `json:"text"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

// NodeInfo describes a YAML node.
type NodeInfo struct {
	Kind        string       `json:"kind"`
	Path        string       `json:"path"`
	Raw         string       `json:"raw"`
	Description string       `json:"description,omitempty"`
	Range       symbol.Range `json:"range"`
	Document    int          `json:"document"`
}

// FindNodeResult contains the node at a position, if any.
type FindNodeResult struct {
	Node    *NodeInfo `json:"node,omitempty"`
	Message string    `json:"message"`
	Found   bool      `json:"found"`
}

func findNodeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "find_node",
		Description: "Find the smallest YAML node at a zero-based position, with its YAML path and, when schemas are configured, its description.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: positionSchema(),
			Required:   []string{"text", "line", "character"},
		},
	}
}

// FindNode handles the find_node tool call.
func (s *Server) FindNode(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[FindNodeParams],
) (*mcp.CallToolResultFor[FindNodeResult], error) {
	args := params.Arguments

	docs, lines := yaml.Parse(args.Text)

	result := FindNodeResult{
		Message: fmt.Sprintf("No node at line %d, character %d.", args.Line, args.Character),
	}

	m, ok := yaml.FindNodeAtPosition(docs, lines, args.Line, args.Character)
	if ok {
		sl, sc := lines.Position(m.Node.Start)
		el, ec := lines.Position(m.Node.End)

		info := &NodeInfo{
			Kind: m.Node.Kind,
			Path: m.Node.Path(),
			Raw:  truncateString(m.Node.Raw, maxRawLength),
			Range: symbol.Range{
				Start: symbol.Position{Line: sl, Character: sc},
				End:   symbol.Position{Line: el, Character: ec},
			},
			Document: slices.Index(docs, m.Document),
		}

		if s.schemas != nil {
			info.Description, _ = s.schemas.Hover(m)
		}

		result.Found = true
		result.Node = info
		result.Message = fmt.Sprintf("Found %s at %s.", info.Kind, info.Path)
	}

	return &mcp.CallToolResultFor[FindNodeResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}
