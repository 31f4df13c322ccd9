// Package mcpserver exposes the assistant as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name    = "onboardai"
	Version = "0.1.0"
)

type Assistant interface {
	Ask(ctx context.Context, question string) *domain.Answer
	Brief(ctx context.Context) *domain.BriefResult
}

type SyncStatus interface {
	Status(ctx context.Context) (domain.SyncStatus, error)
}

type IntelSearch interface {
	Search(ctx context.Context, query string, count int, freshness string) youcom.LiveResult
}

// Deps are the services behind the tools.
type Deps struct {
	Assistant Assistant
	Sync      SyncStatus
	Intel     IntelSearch
}

// New builds an MCP server with the ask, brief, sync_status and
// intel_search tools registered.
func New(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Answers onboarding questions from company Notion, GitHub and Slack "+
			"content, compiles the daily brief and searches competitor news."),
	)

	for _, tool := range Tools(deps) {
		s.AddTool(tool.Definition(), tool.Handle)
	}
	return s
}

// Tool is one registered MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func Tools(deps Deps) []Tool {
	return []Tool{
		&AskTool{assistant: deps.Assistant},
		&BriefTool{assistant: deps.Assistant},
		&SyncStatusTool{sync: deps.Sync},
		&IntelSearchTool{intel: deps.Intel},
	}
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
