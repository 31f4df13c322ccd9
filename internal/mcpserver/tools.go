package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/mark3labs/mcp-go/mcp"
)

type AskTool struct {
	assistant Assistant
}

func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Answer a question about the company using synced Notion, GitHub and Slack "+
			"content. Competitor questions also use cached and live competitor research."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
}

func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := strings.TrimSpace(req.GetString("question", ""))
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	ans := t.assistant.Ask(ctx, question)
	if ans.Brief != nil {
		return jsonResult(ans.Brief)
	}

	var b strings.Builder
	b.WriteString(ans.Answer)
	if len(ans.Citations) > 0 {
		b.WriteString("\n\nSources:\n")
		for i, c := range ans.Citations {
			fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, c.Source, c.Title)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

type BriefTool struct {
	assistant Assistant
}

func (t *BriefTool) Definition() mcp.Tool {
	return mcp.NewTool("brief",
		mcp.WithDescription("Compile today's product brief with summary, product, sales, company, "+
			"onboarding and risks sections."),
	)
}

func (t *BriefTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.assistant.Brief(ctx)
	return jsonResult(res.Brief)
}

type SyncStatusTool struct {
	sync SyncStatus
}

func (t *SyncStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("sync_status",
		mcp.WithDescription("Report when the knowledge base was last synced and when the next sync is due."),
	)
}

func (t *SyncStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := t.sync.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sync status unavailable: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Last sync: %s\nNext sync: %s",
		formatTime(status.LastSyncAt), formatTime(status.NextSyncAt))), nil
}

type IntelSearchTool struct {
	intel IntelSearch
}

func (t *IntelSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("intel_search",
		mcp.WithDescription("Search the live web and news for competitor information."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query, e.g. a competitor name and topic"),
		),
		mcp.WithNumber("count",
			mcp.Description(fmt.Sprintf("Results per section (default: %d, max: %d)", service.DefaultSearchCount, youcom.MaxSearchCount)),
		),
		mcp.WithString("freshness",
			mcp.Description("day, week, month or year (default: month)"),
		),
	)
}

func (t *IntelSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	res := t.intel.Search(ctx, query, intArg(req, "count", service.DefaultSearchCount), req.GetString("freshness", ""))
	if len(res.Web) == 0 && len(res.News) == 0 {
		return mcp.NewToolResultText("No results found for " + query + "."), nil
	}

	var b strings.Builder
	writeHits(&b, "Web", res.Web)
	writeHits(&b, "News", res.News)
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func writeHits(b *strings.Builder, heading string, hits []youcom.Hit) {
	if len(hits) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", heading, len(hits))
	for i, h := range hits {
		fmt.Fprintf(b, "[%d] %s\n    %s\n    %s\n", i+1, h.Title, domain.Ellipsize(h.Content, 300), h.URL)
	}
	b.WriteString("\n")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
