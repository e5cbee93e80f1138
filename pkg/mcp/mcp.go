package mcp

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

const (
	name         = "kls"
	instructions = `MCP Server 'kls' answers structural questions about Kubernetes YAML manifests.

When to use these tools:
- Checking whether a YAML text is a Kubernetes manifest before reasoning about it
- Finding the YAML node (and its path) at a cursor position
- Converting a schema group/version/kind into the apiVersion/kind written in manifests
- Linting manifests and listing their key symbols

All positions are zero-based. Characters are byte offsets within the line.

Workflow:
1. Use 'detect_manifest' on a text if you are unsure it is a Kubernetes manifest.
2. Use 'list_symbols' to find the qualified name and range of a key (e.g. "$.spec.replicas").
3. Use 'find_node' with a position from 'list_symbols' to read the node and its schema description.
4. Use 'lint' to report problems, and again after editing to confirm they are fixed.
`

	// maxRawLength bounds raw node text returned by tools.
	maxRawLength = 2000
)

func textSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "The full YAML text. May contain multiple documents separated by '---'.",
	}
}

func positionSchema() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"text": textSchema(),
		"line": {
			Type:        "integer",
			Description: "Zero-based line number.",
		},
		"character": {
			Type:        "integer",
			Description: "Zero-based byte offset within the line.",
		},
	}
}

// truncateString truncates a string to maxLen characters with ellipsis if needed.
func truncateString(str string, maxLen int) string {
	if str == "" {
		return ""
	}
	if len(str) > maxLen {
		return str[:maxLen] + "\n[OUTPUT TRUNCATED]"
	}

	return str
}
