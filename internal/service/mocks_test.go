package service

import (
	"context"
	"sync"
	"time"

	"github.com/cloo-solutions/onboardai/internal/composio"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/stretchr/testify/mock"
)

// MockKnowledgeRepository is a mock implementation of KnowledgeRepositoryInterface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) CreateBatch(ctx context.Context, items []*domain.KnowledgeItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) SearchSimilar(ctx context.Context, vec []float32, k int) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, vec, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

// MockIntelRepository is a mock implementation of CompetitorIntelRepositoryInterface
type MockIntelRepository struct {
	mock.Mock
}

func (m *MockIntelRepository) CreateBatch(ctx context.Context, rows []*domain.CompetitorIntel) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockIntelRepository) ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CompetitorIntel), args.Error(1)
}

func (m *MockIntelRepository) ListRecentByCompetitors(ctx context.Context, names []string, limit int) ([]*domain.CompetitorIntel, error) {
	args := m.Called(ctx, names, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CompetitorIntel), args.Error(1)
}

func (m *MockIntelRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.CompetitorIntel, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CompetitorIntel), args.Error(1)
}

// MockSyncStateRepository is a mock implementation of SyncStateRepositoryInterface
type MockSyncStateRepository struct {
	mock.Mock
}

func (m *MockSyncStateRepository) GetTime(ctx context.Context, key string) (*time.Time, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockSyncStateRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	args := m.Called(ctx, key, t)
	return args.Error(0)
}

// MockEmbedder is a mock implementation of llm.Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string, task llm.EmbedTask) ([]float32, error) {
	args := m.Called(ctx, text, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockGenerator is a mock implementation of llm.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (llm.Generation, error) {
	args := m.Called(ctx, prompt, opts)
	return args.Get(0).(llm.Generation), args.Error(1)
}

// MockWebSearcher is a mock implementation of WebSearcher
type MockWebSearcher struct {
	mock.Mock
	configured bool
}

func (m *MockWebSearcher) Configured() bool {
	return m.configured
}

func (m *MockWebSearcher) Search(ctx context.Context, query string, count int, freshness string) (*youcom.SearchResponse, error) {
	args := m.Called(ctx, query, count, freshness)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youcom.SearchResponse), args.Error(1)
}

func (m *MockWebSearcher) LiveSearch(ctx context.Context, query string, count int, freshness string) (youcom.LiveResult, error) {
	args := m.Called(ctx, query, count, freshness)
	return args.Get(0).(youcom.LiveResult), args.Error(1)
}

// MockBriefArchive is a mock implementation of BriefArchive
type MockBriefArchive struct {
	mock.Mock
}

func (m *MockBriefArchive) Save(ctx context.Context, result *domain.BriefResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockBriefArchive) Latest(ctx context.Context) (*domain.BriefResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BriefResult), args.Error(1)
}

// fakeToolRunner answers toolkit operations from a slug keyed script.
type fakeToolRunner struct {
	mu          sync.Mutex
	configured  bool
	connections []composio.Connection
	listErr     error
	responses   map[string]func(args map[string]any) (any, error)
	calls       []string
}

func (f *fakeToolRunner) Configured() bool {
	return f.configured
}

func (f *fakeToolRunner) ListConnections(ctx context.Context, toolkits []string) ([]composio.Connection, error) {
	return f.connections, f.listErr
}

func (f *fakeToolRunner) Execute(ctx context.Context, slug, accountID string, args map[string]any) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slug)
	f.mu.Unlock()
	if fn, ok := f.responses[slug]; ok {
		return fn(args)
	}
	return nil, &composio.APIError{StatusCode: 404, Message: "tool not found", Endpoint: "/tools/execute/" + slug}
}

func (f *fakeToolRunner) called(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == slug {
			n++
		}
	}
	return n
}

type testRepos struct {
	knowledge KnowledgeRepositoryInterface
	intel     CompetitorIntelRepositoryInterface
	syncState SyncStateRepositoryInterface
}

func (t *testRepos) Knowledge() KnowledgeRepositoryInterface {
	return t.knowledge
}

func (t *testRepos) Intel() CompetitorIntelRepositoryInterface {
	return t.intel
}

func (t *testRepos) SyncState() SyncStateRepositoryInterface {
	return t.syncState
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
