package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"go.uber.org/zap"
)

// DefaultTopK is the number of corpus items retrieved per question.
const DefaultTopK = 5

// RetrievalService embeds text and finds the nearest stored items.
type RetrievalService struct {
	embedder llm.Embedder
	logger   *zap.Logger
	topK     int
}

func NewRetrievalService(embedder llm.Embedder, logger *zap.Logger) *RetrievalService {
	if embedder == nil {
		embedder = llm.NoOpEmbedder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrievalService{embedder: embedder, logger: logger, topK: DefaultTopK}
}

// Embed returns a vector for text, or nil when the provider is unavailable
// or fails. Callers treat nil as "search by recency".
func (s *RetrievalService) Embed(ctx context.Context, text string, task llm.EmbedTask) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, text, task)
	if err != nil {
		s.logger.Debug("embedding unavailable", zap.String("task", string(task)), zap.Error(err))
		return nil
	}
	return vec
}

// Search returns up to k items ordered by cosine distance to vec. A nil vec
// returns the k most recent items instead.
func (s *RetrievalService) Search(ctx context.Context, repo KnowledgeRepositoryInterface, vec []float32, k int) ([]*domain.KnowledgeItem, error) {
	if k <= 0 {
		k = s.topK
	}
	items, err := repo.SearchSimilar(ctx, vec, k)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "knowledge search failed", err)
	}
	return items, nil
}

// Retrieve embeds question in query mode and searches the corpus.
func (s *RetrievalService) Retrieve(ctx context.Context, repo KnowledgeRepositoryInterface, question string) ([]*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	vec := s.Embed(ctx, question, llm.TaskQuery)
	items, err := s.Search(ctx, repo, vec, s.topK)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return items, nil
}
