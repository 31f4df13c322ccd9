package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100

	DefaultSearchCount = 8

	refreshCount       = 5
	refreshMinContent  = 20
	refreshMaxContent  = 2000
	refreshMaxURLChars = 512
)

// IntelFeedPage is one page of cached intel, newest first.
type IntelFeedPage = pagination.PageResult[*domain.CompetitorIntel]

// IntelService refreshes, lists and searches competitor research.
type IntelService struct {
	web     WebSearcher
	intel   CompetitorIntelRepositoryInterface
	sources *config.Sources
	logger  *zap.Logger
}

func NewIntelService(web WebSearcher, intel CompetitorIntelRepositoryInterface, sources *config.Sources, logger *zap.Logger) *IntelService {
	if sources == nil {
		sources = config.DefaultSources()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntelService{web: web, intel: intel, sources: sources, logger: logger}
}

// Refresh runs every configured competitor query and stores the usable web
// hits. A failing query contributes nothing. Returns the number of rows
// stored; without a search credential it stores nothing.
func (s *IntelService) Refresh(ctx context.Context) (int, error) {
	if s.web == nil || !s.web.Configured() {
		s.logger.Info("intel refresh skipped, search not configured")
		return 0, nil
	}
	ctx, span := telemetry.StartSpan(ctx, "IntelService.Refresh", telemetry.SpanAttributes{
		Provider:  "you.com",
		Operation: "refresh",
	})
	defer span.End()

	queries := s.sources.CompetitorQueries
	found := make([][]*domain.CompetitorIntel, len(queries))

	var g errgroup.Group
	g.SetLimit(2)
	for i, q := range queries {
		g.Go(func() error {
			resp, err := s.web.Search(ctx, q.Query, refreshCount, liveFreshness)
			if err != nil {
				s.logger.Warn("competitor search failed", zap.String("competitor", q.Name), zap.Error(err))
				return nil
			}
			found[i] = ParseIntelHits(resp, q)
			return nil
		})
	}
	_ = g.Wait()

	var rows []*domain.CompetitorIntel
	for _, f := range found {
		rows = append(rows, f...)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.intel.CreateBatch(ctx, rows); err != nil {
		span.SetError(err)
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to store competitor intel", err)
	}
	s.logger.Info("competitor intel refreshed", zap.Int("added", len(rows)))
	return len(rows), nil
}

// ParseIntelHits converts the first five web hits of a search into intel
// rows, skipping hits with fewer than 20 characters of text.
func ParseIntelHits(resp *youcom.SearchResponse, q config.CompetitorQuery) []*domain.CompetitorIntel {
	if resp == nil {
		return nil
	}
	web := resp.Results.Web
	if len(web) > refreshCount {
		web = web[:refreshCount]
	}
	var rows []*domain.CompetitorIntel
	for _, hit := range web {
		text := hit.WebText()
		if len(strings.TrimSpace(text)) < refreshMinContent {
			continue
		}
		row, err := domain.NewCompetitorIntel(q.Name, q.IntelType,
			strings.TrimSpace(domain.Ellipsize(text, refreshMaxContent)),
			domain.Truncate(hit.URL, refreshMaxURLChars))
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Feed lists cached intel newest first, resuming after cursor when given.
func (s *IntelService) Feed(ctx context.Context, cursor string, limit int) (*IntelFeedPage, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	cur, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	rows, err := s.intel.ListWithCursor(ctx, cur, limit+1)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to list competitor intel", err)
	}
	page := &IntelFeedPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
		last := page.Items[len(page.Items)-1]
		page.Cursor = pagination.EncodeCursor(pagination.FormatID(last.ID), last.CreatedAt)
	}
	if page.Items == nil {
		page.Items = []*domain.CompetitorIntel{}
	}
	return page, nil
}

// Search runs a live web and news search. Count is clamped to [1, 20] and
// freshness defaults to "month". A missing credential or upstream failure
// returns an empty result.
func (s *IntelService) Search(ctx context.Context, query string, count int, freshness string) youcom.LiveResult {
	if count < 1 {
		count = 1
	}
	if count > youcom.MaxSearchCount {
		count = youcom.MaxSearchCount
	}
	if strings.TrimSpace(freshness) == "" {
		freshness = youcom.DefaultFreshness
	}
	empty := youcom.LiveResult{Query: strings.TrimSpace(query), Web: []youcom.Hit{}, News: []youcom.Hit{}}
	if s.web == nil {
		return empty
	}
	res, err := s.web.LiveSearch(ctx, query, count, freshness)
	if err != nil {
		s.logger.Warn("live search failed", zap.Error(err))
		return empty
	}
	return res
}
