package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIntelHandler_Feed_Defaults(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	page := &service.IntelFeedPage{
		Items: []*domain.CompetitorIntel{{
			ID: 3, CompetitorName: "Zendesk", IntelType: domain.IntelTypePricing,
			Content: "Suite Team is $55", CreatedAt: time.Now().UTC(),
		}},
		Cursor:  "abc",
		HasMore: true,
	}
	mockSvc.On("Feed", mock.Anything, "", service.DefaultFeedLimit).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/intel/feed", nil)
	w := httptest.NewRecorder()

	handler.Feed(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items   []domain.CompetitorIntel `json:"items"`
		Cursor  string                   `json:"cursor"`
		HasMore bool                     `json:"has_more"`
	}
	decodeData(t, w.Body.Bytes(), &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Zendesk", resp.Items[0].CompetitorName)
	assert.True(t, resp.HasMore)
	assert.Equal(t, "abc", resp.Cursor)
}

func TestIntelHandler_Feed_CursorAndLimit(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	mockSvc.On("Feed", mock.Anything, "Y3Vy", 5).Return(&service.IntelFeedPage{Items: []*domain.CompetitorIntel{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/intel/feed?limit=5&cursor=Y3Vy", nil)
	w := httptest.NewRecorder()

	handler.Feed(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestIntelHandler_Feed_BadInput(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/intel/feed?limit=ten", nil)
	w := httptest.NewRecorder()
	handler.Feed(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockSvc.On("Feed", mock.Anything, "garbage", service.DefaultFeedLimit).Return(nil, domain.ErrInvalidCursor)
	req = httptest.NewRequest(http.MethodGet, "/api/intel/feed?cursor=garbage", nil)
	w = httptest.NewRecorder()
	handler.Feed(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid cursor")
}

func TestIntelHandler_Search(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, "intercom fin", service.DefaultSearchCount, "week").Return(youcom.LiveResult{
		Query: "intercom fin",
		Web:   []youcom.Hit{{Title: "Fin 2", Content: "Intercom launched Fin 2", URL: "https://example.com/fin"}},
		News:  []youcom.Hit{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/intel/search?q=intercom+fin&freshness=week", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp youcom.LiveResult
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "intercom fin", resp.Query)
	require.Len(t, resp.Web, 1)
	assert.Empty(t, resp.News)
}

func TestIntelHandler_Search_MissingQuery(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/intel/search?count=3", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "q is required")
}

func TestIntelHandler_Refresh(t *testing.T) {
	mockSvc := new(MockIntelService)
	handler := NewIntelHandler(mockSvc)

	mockSvc.On("Refresh", mock.Anything).Return(9, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/intel/refresh", nil)
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp RefreshResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, 9, resp.Added)
}
