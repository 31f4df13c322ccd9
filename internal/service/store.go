package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
)

// KnowledgeRepositoryInterface defines corpus persistence.
type KnowledgeRepositoryInterface interface {
	CreateBatch(ctx context.Context, items []*domain.KnowledgeItem) error
	SearchSimilar(ctx context.Context, vec []float32, k int) ([]*domain.KnowledgeItem, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error)
}

// CompetitorIntelRepositoryInterface defines cached intel persistence.
type CompetitorIntelRepositoryInterface interface {
	CreateBatch(ctx context.Context, rows []*domain.CompetitorIntel) error
	ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error)
	ListRecentByCompetitors(ctx context.Context, names []string, limit int) ([]*domain.CompetitorIntel, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.CompetitorIntel, error)
}

// SyncStateRepositoryInterface stores checkpoint timestamps by key.
type SyncStateRepositoryInterface interface {
	GetTime(ctx context.Context, key string) (*time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}

// Repositories is the set of stores reachable through one data-access handle.
type Repositories interface {
	Knowledge() KnowledgeRepositoryInterface
	Intel() CompetitorIntelRepositoryInterface
	SyncState() SyncStateRepositoryInterface
}

// Handle is a data-access handle dedicated to one request. Release must be
// called exactly once.
type Handle interface {
	Repositories
	Release()
}

// HandleProvider hands out fresh per-request handles.
type HandleProvider interface {
	Acquire(ctx context.Context) (Handle, error)
	Ping(ctx context.Context) error
}
