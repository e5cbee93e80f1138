package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/kls/pkg/kube"
)

// ResolveGVKParams defines parameters for the resolve_gvk tool.
type ResolveGVKParams struct {
	Group   string `json:"group,omitempty"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
}

// ResolveGVKResult contains the resolved apiVersion and kind.
type ResolveGVKResult struct {
	APIVersion string `json:"apiVersion,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message"`
}

func resolveGVKTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_gvk",
		Description: "Convert a schema group/version/kind into the apiVersion and kind written at the top of a manifest.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"group": {
					Type:        "string",
					Description: "The API group. Empty for the core group.",
				},
				"version": {
					Type:        "string",
					Description: "The API version, e.g. v1.",
				},
				"kind": {
					Type:        "string",
					Description: "The kind, e.g. Deployment.",
				},
			},
			Required: []string{"version", "kind"},
		},
	}
}

// ResolveGVK handles the resolve_gvk tool call. An incomplete
// group/version/kind is reported as a tool error result.
func (s *Server) ResolveGVK(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ResolveGVKParams],
) (*mcp.CallToolResultFor[ResolveGVKResult], error) {
	args := params.Arguments

	var result ResolveGVKResult

	id, err := kube.Resolve(kube.GroupVersionKind{
		Group:   args.Group,
		Version: args.Version,
		Kind:    args.Kind,
	})
	if err != nil {
		result.Error = err.Error()
		result.Message = "Cannot resolve: " + err.Error()
	} else {
		result.APIVersion = id.APIVersion
		result.Kind = id.Kind
		result.Message = fmt.Sprintf("apiVersion: %s\nkind: %s", id.APIVersion, id.Kind)
	}

	return &mcp.CallToolResultFor[ResolveGVKResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
		IsError:           err != nil,
	}, nil
}
