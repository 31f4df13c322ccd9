package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssistantService struct {
	mock.Mock
}

func (m *MockAssistantService) Ask(ctx context.Context, question string) *domain.Answer {
	args := m.Called(ctx, question)
	return args.Get(0).(*domain.Answer)
}

func (m *MockAssistantService) Brief(ctx context.Context) *domain.BriefResult {
	args := m.Called(ctx)
	return args.Get(0).(*domain.BriefResult)
}

func (m *MockAssistantService) LatestBrief(ctx context.Context) (*domain.BriefResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BriefResult), args.Error(1)
}

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context) (*domain.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncService) Status(ctx context.Context) (domain.SyncStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SyncStatus), args.Error(1)
}

type MockIntelService struct {
	mock.Mock
}

func (m *MockIntelService) Feed(ctx context.Context, cursor string, limit int) (*service.IntelFeedPage, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IntelFeedPage), args.Error(1)
}

func (m *MockIntelService) Search(ctx context.Context, query string, count int, freshness string) youcom.LiveResult {
	args := m.Called(ctx, query, count, freshness)
	return args.Get(0).(youcom.LiveResult)
}

func (m *MockIntelService) Refresh(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// decodeData unwraps the {"data": ...} envelope into out.
func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}
