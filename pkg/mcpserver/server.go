// Package mcpserver exposes the generation pipeline as MCP tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolGenerateUI     = "generate_ui"
	ToolAnalyzeContent = "analyze_content"
)

// New creates an MCP server with the generation tools registered.
func New(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "genui",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGenerateUI,
		Description: "Generate a UI document for the given content. Runs design analysis first, then renders a JSON document with a theme and a component tree.",
	}, svc.GenerateUI)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyzeContent,
		Description: "Analyze content and return a design specification covering layout, colors, typography, spacing and components.",
	}, svc.AnalyzeContent)

	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, svc *Service, version string) error {
	return New(svc, version).Run(ctx, &mcp.StdioTransport{})
}
