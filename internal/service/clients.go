package service

import (
	"context"

	"github.com/cloo-solutions/onboardai/internal/composio"
	"github.com/cloo-solutions/onboardai/internal/youcom"
)

// ToolRunner executes toolkit operations on connected accounts.
type ToolRunner interface {
	Configured() bool
	ListConnections(ctx context.Context, toolkits []string) ([]composio.Connection, error)
	Execute(ctx context.Context, slug, accountID string, args map[string]any) (any, error)
}

// WebSearcher runs live web and news searches.
type WebSearcher interface {
	Configured() bool
	Search(ctx context.Context, query string, count int, freshness string) (*youcom.SearchResponse, error)
	LiveSearch(ctx context.Context, query string, count int, freshness string) (youcom.LiveResult, error)
}
