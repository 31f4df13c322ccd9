package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/service"
)

type fakeKnowledge struct {
	search func(ctx context.Context) ([]*domain.KnowledgeItem, error)
}

func (f *fakeKnowledge) CreateBatch(ctx context.Context, items []*domain.KnowledgeItem) error {
	return nil
}

func (f *fakeKnowledge) SearchSimilar(ctx context.Context, vec []float32, k int) ([]*domain.KnowledgeItem, error) {
	return f.search(ctx)
}

func (f *fakeKnowledge) ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error) {
	return f.search(ctx)
}

type fakeIntel struct{}

func (fakeIntel) CreateBatch(ctx context.Context, rows []*domain.CompetitorIntel) error { return nil }

func (fakeIntel) ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error) {
	return nil, nil
}

func (fakeIntel) ListRecentByCompetitors(ctx context.Context, names []string, limit int) ([]*domain.CompetitorIntel, error) {
	return nil, nil
}

func (fakeIntel) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.CompetitorIntel, error) {
	return nil, nil
}

type fakeSyncState struct{}

func (fakeSyncState) GetTime(ctx context.Context, key string) (*time.Time, error) { return nil, nil }

func (fakeSyncState) SetTime(ctx context.Context, key string, t time.Time) error { return nil }

type fakeHandle struct {
	knowledge *fakeKnowledge
	released  *atomic.Int32
	once      sync.Once
}

func (h *fakeHandle) Knowledge() service.KnowledgeRepositoryInterface { return h.knowledge }

func (h *fakeHandle) Intel() service.CompetitorIntelRepositoryInterface { return fakeIntel{} }

func (h *fakeHandle) SyncState() service.SyncStateRepositoryInterface { return fakeSyncState{} }

func (h *fakeHandle) Release() {
	h.once.Do(func() { h.released.Add(1) })
}

// fakeHandles counts every acquire and release.
type fakeHandles struct {
	knowledge  *fakeKnowledge
	acquireErr error
	acquired   atomic.Int32
	released   atomic.Int32
}

func newFakeHandles(search func(ctx context.Context) ([]*domain.KnowledgeItem, error)) *fakeHandles {
	return &fakeHandles{knowledge: &fakeKnowledge{search: search}}
}

func (p *fakeHandles) Acquire(ctx context.Context) (service.Handle, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return &fakeHandle{knowledge: p.knowledge, released: &p.released}, nil
}

func (p *fakeHandles) Ping(ctx context.Context) error { return p.acquireErr }

func corpusItems() []*domain.KnowledgeItem {
	return []*domain.KnowledgeItem{{
		ID:       1,
		Source:   domain.SourceNotion,
		Content:  "Velora ships weekly. Releases go out on Thursdays.",
		Metadata: domain.Metadata{"title": "Release cadence"},
	}}
}
