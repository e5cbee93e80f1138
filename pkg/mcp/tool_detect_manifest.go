package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/yaml"
)

// DetectManifestParams defines parameters for the detect_manifest tool.
type DetectManifestParams struct {
	Text string `json:"text"`
}

// DocumentInfo summarizes one YAML document.
type DocumentInfo struct {
	APIVersion string   `json:"apiVersion,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Index      int      `json:"index"`
}

// DetectManifestResult contains the result of detecting a manifest.
type DetectManifestResult struct {
	Message   string         `json:"message"`
	Documents []DocumentInfo `json:"documents"`
	Manifest  bool           `json:"manifest"`
}

func detectManifestTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "detect_manifest",
		Description: "Report whether a YAML text is a Kubernetes manifest, and list the apiVersion/kind of each document.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"text": textSchema(),
			},
			Required: []string{"text"},
		},
	}
}

// DetectManifest handles the detect_manifest tool call.
func (s *Server) DetectManifest(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[DetectManifestParams],
) (*mcp.CallToolResultFor[DetectManifestResult], error) {
	text := params.Arguments.Text

	result := DetectManifestResult{
		Manifest:  kube.IsManifest(text),
		Documents: []DocumentInfo{},
	}

	docs, _ := yaml.Parse(text)
	for i, doc := range docs {
		info := DocumentInfo{Index: i, Errors: doc.Errors}
		if id, ok := kube.DocumentIdentity(doc); ok {
			info.APIVersion = id.APIVersion
			info.Kind = id.Kind
		}

		result.Documents = append(result.Documents, info)
	}

	if result.Manifest {
		result.Message = fmt.Sprintf("The text is a Kubernetes manifest with %d document(s).", len(docs))
	} else {
		result.Message = "The text is not a Kubernetes manifest."
	}

	return &mcp.CallToolResultFor[DetectManifestResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}
