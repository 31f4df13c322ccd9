package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/normalize"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Toolkit operation names.
const (
	notionSearchPages   = "NOTION_SEARCH_NOTION_PAGE"
	notionFetchBlocks   = "NOTION_FETCH_BLOCK_CONTENTS"
	notionFetchData     = "NOTION_FETCH_DATA"
	slackHistoryPrimary = "SLACK_CONVERSATIONS_HISTORY"
	slackHistoryLegacy  = "SLACK_CHANNEL_HISTORY"
)

var (
	githubListRepos   = []string{"GITHUB_REPOS_LIST_FOR_AUTHENTICATED_USER", "GITHUB_LIST_REPOS", "GITHUB_REPOS_LIST"}
	githubGetReadme   = []string{"GITHUB_REPOS_GET_README", "GITHUB_GET_README"}
	slackListChannels = []string{"SLACK_CONVERSATIONS_LIST", "SLACK_CHANNELS_LIST"}
	slackHistory      = []string{slackHistoryPrimary, slackHistoryLegacy}
)

const (
	notionSearchCap = 25
	notionFetchCap  = 20
	githubRepoCap   = 15
	slackListLimit  = 50
	slackMessageCap = 30
	titleChars      = 200

	embedConcurrency = 4
)

// ParseSchedule parses a cron spec or descriptor such as "@every 6h". An
// empty or invalid spec yields the default six hour interval.
func ParseSchedule(spec string) cron.Schedule {
	if strings.TrimSpace(spec) != "" {
		if s, err := cron.ParseStandard(spec); err == nil {
			return s
		}
	}
	return cron.Every(domain.DefaultSyncInterval)
}

// IngestionService pulls recent content from the connected toolkits and
// stores it as corpus items.
type IngestionService struct {
	tools     ToolRunner
	retrieval *RetrievalService
	txRunner  TxRunner
	state     SyncStateRepositoryInterface
	sources   *config.Sources
	schedule  cron.Schedule
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

func NewIngestionService(
	tools ToolRunner,
	retrieval *RetrievalService,
	txRunner TxRunner,
	state SyncStateRepositoryInterface,
	sources *config.Sources,
	schedule cron.Schedule,
	logger *zap.Logger,
) *IngestionService {
	if sources == nil {
		sources = config.DefaultSources()
	}
	if schedule == nil {
		schedule = cron.Every(domain.DefaultSyncInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		tools:     tools,
		retrieval: retrieval,
		txRunner:  txRunner,
		state:     state,
		sources:   sources,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

type fetched struct {
	source domain.Source
	raw    string
	meta   domain.Metadata
}

// Sync runs one ingestion pass. Upstream failures only reduce what is
// stored; the error return is reserved for the store. All rows and both
// checkpoints are written in a single transaction. Passes are serialized.
func (s *IngestionService) Sync(ctx context.Context) (*domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &domain.SyncResult{}
	if s.tools == nil || !s.tools.Configured() {
		s.logger.Info("sync skipped, toolkit credential not configured")
		return result, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Sync", telemetry.SpanAttributes{
		Provider:  "composio",
		Operation: "sync",
	})
	defer span.End()

	accounts := s.firstAccounts(ctx)

	var all []fetched
	for _, src := range []domain.Source{domain.SourceNotion, domain.SourceGitHub, domain.SourceSlack} {
		account, ok := accounts[string(src)]
		if !ok {
			result.Sources = append(result.Sources, domain.FetchLog{Source: src, Outcome: domain.OutcomeUnconfigured})
			continue
		}
		var (
			got    []fetched
			failed bool
		)
		switch src {
		case domain.SourceNotion:
			got, failed = s.fetchNotion(ctx, account)
		case domain.SourceGitHub:
			got, failed = s.fetchGitHub(ctx, account)
		case domain.SourceSlack:
			got, failed = s.fetchSlack(ctx, account)
		}
		all = append(all, got...)
		s.logger.Debug("source fetched", zap.String("source", string(src)), zap.Int("raw_items", len(got)))
		outcome := domain.OutcomeOK
		if len(got) == 0 {
			outcome = domain.OutcomeEmpty
			if failed {
				outcome = domain.OutcomeUpstreamError
			}
		}
		result.Sources = append(result.Sources, domain.FetchLog{Source: src, Outcome: outcome})
	}

	items := s.buildItems(ctx, all)

	now := s.now().UTC()
	next := s.schedule.Next(now).UTC()
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Knowledge().CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("failed to store knowledge items: %w", err)
		}
		if err := repos.SyncState().SetTime(ctx, domain.SyncKeyLastSyncAt, now); err != nil {
			return err
		}
		return repos.SyncState().SetTime(ctx, domain.SyncKeyNextSyncAt, next)
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "sync could not be stored", err)
	}

	counts := map[domain.Source]int{}
	for _, it := range items {
		counts[it.Source]++
	}
	result.Notion = counts[domain.SourceNotion]
	result.GitHub = counts[domain.SourceGitHub]
	result.Slack = counts[domain.SourceSlack]
	for i := range result.Sources {
		result.Sources[i].Items = counts[result.Sources[i].Source]
	}
	result.LastSyncAt = &now
	result.NextSyncAt = &next

	s.logger.Info("sync completed",
		zap.Int("notion", result.Notion),
		zap.Int("github", result.GitHub),
		zap.Int("slack", result.Slack),
		zap.Time("next_sync_at", next),
	)
	return result, nil
}

// Status returns the persisted checkpoints, deriving the next run when it
// was never stored.
func (s *IngestionService) Status(ctx context.Context) (domain.SyncStatus, error) {
	now := s.now().UTC()
	last, err := s.state.GetTime(ctx, domain.SyncKeyLastSyncAt)
	if err != nil {
		return domain.SyncStatus{}, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read sync state", err)
	}
	next, err := s.state.GetTime(ctx, domain.SyncKeyNextSyncAt)
	if err != nil {
		return domain.SyncStatus{}, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read sync state", err)
	}
	return domain.ResolveSyncStatus(last, next, s.schedule.Next(now).Sub(now), now), nil
}

// firstAccounts maps each toolkit to its first connected account.
func (s *IngestionService) firstAccounts(ctx context.Context) map[string]string {
	toolkits := []string{string(domain.SourceNotion), string(domain.SourceGitHub), string(domain.SourceSlack)}
	conns, err := s.tools.ListConnections(ctx, toolkits)
	if err != nil {
		s.logger.Warn("failed to list toolkit connections", zap.Error(err))
		return nil
	}
	out := make(map[string]string)
	for _, c := range conns {
		if _, ok := out[c.Toolkit]; !ok {
			out[c.Toolkit] = c.ID
		}
	}
	return out
}

// execute runs a toolkit operation and reports whether it produced data.
func (s *IngestionService) execute(ctx context.Context, slug, account string, args map[string]any) (any, bool) {
	out, err := s.tools.Execute(ctx, slug, account, args)
	if err != nil {
		s.logger.Debug("toolkit operation failed", zap.String("slug", slug), zap.Error(err))
		return nil, false
	}
	if isEmptyPayload(out) {
		return nil, true
	}
	return out, true
}

func isEmptyPayload(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func (s *IngestionService) fetchNotion(ctx context.Context, account string) ([]fetched, bool) {
	search, ok := s.execute(ctx, notionSearchPages, account, map[string]any{"query": ""})
	if search == nil {
		return nil, !ok
	}
	ids := normalize.NotionPageIDs(search, notionSearchCap)
	if len(ids) > notionFetchCap {
		ids = ids[:notionFetchCap]
	}

	out := make([]fetched, 0, len(ids))
	for _, id := range ids {
		page, _ := s.execute(ctx, notionFetchBlocks, account, map[string]any{"block_id": id})
		if page == nil {
			page, _ = s.execute(ctx, notionFetchData, account, map[string]any{"resource_id": id})
		}
		content := normalize.BlockText(page)
		if content == "" {
			content = "Page " + id
		}
		out = append(out, fetched{
			source: domain.SourceNotion,
			raw:    content,
			meta: domain.Metadata{
				"page_id": id,
				"title":   domain.Truncate(content, titleChars),
				"created": s.now().UTC().Format(time.RFC3339),
			},
		})
	}
	return out, false
}

func (s *IngestionService) fetchGitHub(ctx context.Context, account string) ([]fetched, bool) {
	var repos []normalize.Repo
	failed := false
	for _, slug := range githubListRepos {
		listing, ok := s.execute(ctx, slug, account, map[string]any{"per_page": githubRepoCap})
		if !ok {
			failed = true
		}
		if repos = normalize.Repos(listing); len(repos) > 0 {
			break
		}
	}
	if len(repos) > githubRepoCap {
		repos = repos[:githubRepoCap]
	}

	out := make([]fetched, 0, len(repos))
	for _, repo := range repos {
		readme := ""
		for _, slug := range githubGetReadme {
			payload, _ := s.execute(ctx, slug, account, map[string]any{"owner": repo.Owner, "repo": repo.Name})
			if readme = normalize.DecodeReadme(payload); readme != "" {
				break
			}
		}
		if readme == "" {
			readme = "Repository: " + repo.FullName()
		}
		parts := make([]string, 0, 2)
		if repo.Description != "" {
			parts = append(parts, repo.Description)
		}
		parts = append(parts, readme)
		content := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if content == "" {
			content = "README " + repo.FullName()
		}
		out = append(out, fetched{
			source: domain.SourceGitHub,
			raw:    content,
			meta: domain.Metadata{
				"repo_name": repo.Name,
				"owner":     repo.Owner,
				"full_name": repo.FullName(),
				"title":     repo.Title,
				"created":   s.now().UTC().Format(time.RFC3339),
			},
		})
	}
	return out, failed && len(repos) == 0
}

func (s *IngestionService) fetchSlack(ctx context.Context, account string) ([]fetched, bool) {
	allowed := make(map[string]bool, len(s.sources.SlackChannels))
	for _, name := range s.sources.SlackChannels {
		allowed[strings.ToLower(name)] = true
	}

	failed := false
	for _, listSlug := range slackListChannels {
		listing, ok := s.execute(ctx, listSlug, account, map[string]any{"limit": slackListLimit})
		if !ok {
			failed = true
		}
		// a repeated name keeps its first position but the last listed id
		var channels []normalize.Channel
		index := map[string]int{}
		for _, ch := range normalize.Channels(listing) {
			if !allowed[ch.Name] {
				continue
			}
			if i, dup := index[ch.Name]; dup {
				channels[i] = ch
				continue
			}
			index[ch.Name] = len(channels)
			channels = append(channels, ch)
		}
		if len(channels) == 0 {
			continue
		}

		var out []fetched
		for _, ch := range channels {
			out = append(out, s.channelMessages(ctx, account, ch)...)
		}
		return out, false
	}
	return nil, failed
}

// channelMessages reads one channel's history, stopping at the first
// history operation that returns messages. Each message is its own item,
// so identical messages are stored separately.
func (s *IngestionService) channelMessages(ctx context.Context, account string, ch normalize.Channel) []fetched {
	for _, slug := range slackHistory {
		hist, _ := s.execute(ctx, slug, account, map[string]any{"channel": ch.ID, "limit": slackMessageCap})
		msgs := normalize.Messages(hist)
		if len(msgs) == 0 {
			continue
		}
		if len(msgs) > slackMessageCap {
			msgs = msgs[:slackMessageCap]
		}
		created := s.now().UTC().Format(time.RFC3339)
		out := make([]fetched, 0, len(msgs))
		for _, m := range msgs {
			ts := m.Timestamp
			if ts == "" {
				ts = created
			}
			out = append(out, fetched{
				source: domain.SourceSlack,
				raw:    m.Text,
				meta: domain.Metadata{
					"channel":   "#" + ch.Name,
					"author":    m.Author,
					"timestamp": ts,
					"created":   created,
				},
			})
		}
		return out
	}
	return nil
}

// buildItems cleans, embeds and validates fetched content. Items whose
// cleaned text is too short are dropped; embedding failures leave the
// vector empty.
func (s *IngestionService) buildItems(ctx context.Context, all []fetched) []*domain.KnowledgeItem {
	cleaned := make([]string, len(all))
	keep := make([]bool, len(all))
	for i, f := range all {
		cleaned[i], keep[i] = normalize.CleanForStorage(f.raw)
	}

	vectors := make([][]float32, len(all))
	if s.retrieval != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(embedConcurrency)
		for i := range all {
			if !keep[i] {
				continue
			}
			g.Go(func() error {
				vectors[i] = s.retrieval.Embed(gctx, cleaned[i], llm.TaskDocument)
				return nil
			})
		}
		_ = g.Wait()
	}

	items := make([]*domain.KnowledgeItem, 0, len(all))
	for i, f := range all {
		if !keep[i] {
			continue
		}
		item, err := domain.NewKnowledgeItem(f.source, cleaned[i], vectors[i], f.meta)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
