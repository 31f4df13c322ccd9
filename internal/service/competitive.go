package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	cachedIntelLimit = 5
	liveContextLimit = 5
	liveSnippetChars = 300
	liveFreshness    = "month"
	liveDefaultTitle = "You.com result"
)

// CompetitiveAugmenter adds cached competitor intel and live search results
// to the context of a question.
type CompetitiveAugmenter struct {
	web     WebSearcher
	sources *config.Sources
	logger  *zap.Logger
}

func NewCompetitiveAugmenter(web WebSearcher, sources *config.Sources, logger *zap.Logger) *CompetitiveAugmenter {
	if sources == nil {
		sources = config.DefaultSources()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetitiveAugmenter{web: web, sources: sources, logger: logger}
}

// IsCompetitive reports whether question contains a competitor keyword.
func (a *CompetitiveAugmenter) IsCompetitive(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range a.sources.CompetitorKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// MentionedCompetitors returns the configured competitors named in question.
func (a *CompetitiveAugmenter) MentionedCompetitors(question string) []string {
	q := strings.ToLower(question)
	var names []string
	for _, name := range a.sources.CompetitorNames() {
		if strings.Contains(q, strings.ToLower(name)) {
			names = append(names, name)
		}
	}
	return names
}

// RewriteQuery turns a question into a market-focused search query.
func (a *CompetitiveAugmenter) RewriteQuery(question string) string {
	q := strings.ToLower(question)
	company := strings.ToLower(a.sources.Company)
	for _, phrase := range []string{"what is", "what are", "who is", company + "'s", company, "our", "the", "?"} {
		if phrase == "" {
			continue
		}
		q = strings.ReplaceAll(q, phrase, "")
	}
	q = strings.Join(strings.Fields(q), " ")

	market := a.sources.SearchDomain
	software := strings.TrimPrefix(market, "AI ") + " software"
	switch {
	case strings.Contains(q, "product"):
		q = market + " " + q + " competition market alternatives"
	case strings.Contains(q, "pricing"), strings.Contains(q, "cost"), strings.Contains(q, "price"):
		q = software + " " + q + " pricing comparison competitors"
	case strings.Contains(q, "feature"):
		q = market + " " + q + " competitive analysis market"
	default:
		q = market + " " + q + " market competition alternatives"
	}
	return strings.TrimSpace(q)
}

// Augment returns cached intel followed by live search items. Cached intel
// for competitors named in a competitive question comes first. A live
// search failure contributes no items; a cache read failure is returned.
func (a *CompetitiveAugmenter) Augment(ctx context.Context, intel CompetitorIntelRepositoryInterface, question string) ([]domain.ContextItem, error) {
	var cached, live []domain.ContextItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.cachedIntel(gctx, intel, question)
		if err != nil {
			return err
		}
		cached = intelContexts(rows)
		return nil
	})
	g.Go(func() error {
		live = a.liveContexts(gctx, question)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read competitor intel", err)
	}
	return append(cached, live...), nil
}

func (a *CompetitiveAugmenter) cachedIntel(ctx context.Context, intel CompetitorIntelRepositoryInterface, question string) ([]*domain.CompetitorIntel, error) {
	var rows []*domain.CompetitorIntel
	if a.IsCompetitive(question) {
		if names := a.MentionedCompetitors(question); len(names) > 0 {
			named, err := intel.ListRecentByCompetitors(ctx, names, cachedIntelLimit)
			if err != nil {
				return nil, err
			}
			rows = named
		}
	}
	if len(rows) >= cachedIntelLimit {
		return rows, nil
	}
	recent, err := intel.ListRecent(ctx, cachedIntelLimit)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		seen[r.ID] = struct{}{}
	}
	for _, r := range recent {
		if len(rows) >= cachedIntelLimit {
			break
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func intelContexts(rows []*domain.CompetitorIntel) []domain.ContextItem {
	out := make([]domain.ContextItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ContextItem{
			Source:  domain.SourceYouCom,
			Title:   r.Label(),
			Snippet: domain.Truncate(r.Content, liveSnippetChars),
			Content: r.Content,
		})
	}
	return out
}

func (a *CompetitiveAugmenter) liveContexts(ctx context.Context, question string) []domain.ContextItem {
	if a.web == nil || !a.web.Configured() || strings.TrimSpace(question) == "" {
		return nil
	}
	query := a.RewriteQuery(question)
	res, err := a.web.LiveSearch(ctx, query, liveContextLimit, liveFreshness)
	if err != nil {
		a.logger.Warn("live search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	var out []domain.ContextItem
	for _, hit := range append(res.Web, res.News...) {
		content := strings.TrimSpace(hit.Content)
		if content == "" {
			continue
		}
		source := domain.SourceYouComLive
		if hit.SourceName != "" {
			source += " (" + hit.SourceName + ")"
		}
		title := strings.TrimSpace(hit.Title)
		if title == "" {
			title = liveDefaultTitle
		}
		out = append(out, domain.ContextItem{
			Source:  source,
			Title:   title,
			Snippet: domain.Ellipsize(content, liveSnippetChars),
			Content: content,
		})
		if len(out) >= liveContextLimit {
			break
		}
	}
	return out
}
