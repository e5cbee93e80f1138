package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLogLimit = 50

// RecentLogsParams defines parameters for the recent_logs tool.
type RecentLogsParams struct {
	Limit int `json:"limit,omitempty"`
}

// RecentLogsResult contains recent server log records.
type RecentLogsResult struct {
	Records []string `json:"records"`
}

func recentLogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "recent_logs",
		Description: "Return the most recent log records of the kls server, oldest first. Useful when another tool reports an error.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"limit": {
					Type:        "integer",
					Description: "Maximum number of records. Defaults to 50.",
				},
			},
		},
	}
}

// RecentLogs handles the recent_logs tool call.
func (s *Server) RecentLogs(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[RecentLogsParams],
) (*mcp.CallToolResultFor[RecentLogsResult], error) {
	limit := params.Arguments.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	result := RecentLogsResult{Records: []string{}}
	if s.history != nil {
		result.Records = s.history.Last(limit)
	}

	text := strings.Join(result.Records, "\n")
	if text == "" {
		text = "No log records."
	}

	return &mcp.CallToolResultFor[RecentLogsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: result,
	}, nil
}
