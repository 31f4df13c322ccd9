package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func webResponse(hits ...youcom.RawHit) *youcom.SearchResponse {
	resp := &youcom.SearchResponse{}
	resp.Results.Web = hits
	return resp
}

func TestParseIntelHits(t *testing.T) {
	q := config.CompetitorQuery{Name: "Zendesk", IntelType: domain.IntelTypeProduct, Query: "zendesk"}
	long := strings.Repeat("p", 2100)
	resp := webResponse(
		youcom.RawHit{URL: "https://a", Description: "Zendesk launched AI agents for email."},
		youcom.RawHit{URL: "https://b", Title: "too short"},
		youcom.RawHit{URL: "https://c", Snippets: []string{long}},
		youcom.RawHit{URL: "https://d", Description: "fourth hit with enough text"},
		youcom.RawHit{URL: "https://e", Description: "fifth hit with enough text"},
		youcom.RawHit{URL: "https://f", Description: "sixth hit is beyond the cap"},
	)

	rows := ParseIntelHits(resp, q)
	require.Len(t, rows, 4)
	assert.Equal(t, "Zendesk", rows[0].CompetitorName)
	assert.Equal(t, domain.IntelTypeProduct, rows[0].IntelType)
	assert.Equal(t, "https://a", rows[0].SourceURL)
	assert.Len(t, rows[1].Content, 2003)
	assert.True(t, strings.HasSuffix(rows[1].Content, "..."))
	assert.Nil(t, ParseIntelHits(nil, q))
}

func TestIntelService_Refresh(t *testing.T) {
	web := &MockWebSearcher{configured: true}
	web.On("Search", mock.Anything, "Intercom customer support software pricing news", 5, "month").
		Return(webResponse(youcom.RawHit{URL: "https://i", Description: "Intercom moved to per-resolution pricing."}), nil)
	web.On("Search", mock.Anything, "Zendesk AI customer service product updates", 5, "month").
		Return(nil, errors.New("rate limited"))
	web.On("Search", mock.Anything, "Gorgias e-commerce support growth funding", 5, "month").
		Return(webResponse(youcom.RawHit{URL: "https://g", Description: "Gorgias passed 15,000 merchants."}), nil)

	repo := new(MockIntelRepository)
	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(rows []*domain.CompetitorIntel) bool {
		return len(rows) == 2 && rows[0].CompetitorName == "Intercom" && rows[1].CompetitorName == "Gorgias"
	})).Return(nil)

	svc := NewIntelService(web, repo, config.DefaultSources(), nil)
	added, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	repo.AssertExpectations(t)
}

func TestIntelService_RefreshUnconfigured(t *testing.T) {
	repo := new(MockIntelRepository)
	svc := NewIntelService(&MockWebSearcher{}, repo, nil, nil)
	added, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added)
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestIntelService_Feed(t *testing.T) {
	base := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	rows := []*domain.CompetitorIntel{
		{ID: 30, CreatedAt: base},
		{ID: 29, CreatedAt: base.Add(-time.Minute)},
		{ID: 28, CreatedAt: base.Add(-2 * time.Minute)},
	}

	repo := new(MockIntelRepository)
	repo.On("ListWithCursor", mock.Anything, (*pagination.Cursor)(nil), 3).Return(rows, nil)
	svc := NewIntelService(nil, repo, nil, nil)

	page, err := svc.Feed(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	cur, err := pagination.DecodeCursor(page.Cursor)
	require.NoError(t, err)
	assert.Equal(t, "29", cur.LastID)
	assert.True(t, cur.Timestamp.Equal(base.Add(-time.Minute)))

	repo.On("ListWithCursor", mock.Anything, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "29"
	}), 3).Return(rows[2:], nil)
	page, err = svc.Feed(context.Background(), page.Cursor, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestIntelService_FeedDefaultsAndErrors(t *testing.T) {
	repo := new(MockIntelRepository)
	repo.On("ListWithCursor", mock.Anything, (*pagination.Cursor)(nil), DefaultFeedLimit+1).Return(nil, nil)
	svc := NewIntelService(nil, repo, nil, nil)

	page, err := svc.Feed(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	_, err = svc.Feed(context.Background(), "%%%", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidCursor)
}

func TestIntelService_SearchClamps(t *testing.T) {
	web := &MockWebSearcher{configured: true}
	web.On("LiveSearch", mock.Anything, "zendesk", 20, "month").Return(youcom.LiveResult{Query: "zendesk"}, nil)
	web.On("LiveSearch", mock.Anything, "intercom", 1, "week").Return(youcom.LiveResult{}, errors.New("down"))

	svc := NewIntelService(web, nil, nil, nil)
	res := svc.Search(context.Background(), "zendesk", 99, "")
	assert.Equal(t, "zendesk", res.Query)

	res = svc.Search(context.Background(), "intercom", -3, "week")
	assert.Equal(t, "intercom", res.Query)
	assert.NotNil(t, res.Web)
	assert.NotNil(t, res.News)
	web.AssertExpectations(t)
}
