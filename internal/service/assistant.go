package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"go.uber.org/zap"
)

// AssistantService answers questions against the corpus and competitor
// research.
type AssistantService struct {
	retrieval *RetrievalService
	augmenter *CompetitiveAugmenter
	synthesis *SynthesisService
	briefs    *BriefCompiler
	sources   *config.Sources
	logger    *zap.Logger
}

func NewAssistantService(
	retrieval *RetrievalService,
	augmenter *CompetitiveAugmenter,
	synthesis *SynthesisService,
	briefs *BriefCompiler,
	sources *config.Sources,
	logger *zap.Logger,
) *AssistantService {
	if sources == nil {
		sources = config.DefaultSources()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		retrieval: retrieval,
		augmenter: augmenter,
		synthesis: synthesis,
		briefs:    briefs,
		sources:   sources,
		logger:    logger,
	}
}

// EmptyQuestionAnswer is returned for blank questions.
func (s *AssistantService) EmptyQuestionAnswer() *domain.Answer {
	return &domain.Answer{
		Answer:    "Please ask a question about " + s.sources.Company + ".",
		Citations: []domain.Citation{},
		Outcome:   domain.OutcomeEmpty,
	}
}

// IsBriefRequest reports whether question asks for the brief rather than an
// answer.
func (s *AssistantService) IsBriefRequest(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, trigger := range s.sources.BriefTriggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}
	return false
}

// Ask retrieves corpus items for question, adds competitor context and
// synthesizes a cited answer.
func (s *AssistantService) Ask(ctx context.Context, repos Repositories, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return s.EmptyQuestionAnswer(), nil
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	items, err := s.retrieval.Retrieve(ctx, repos.Knowledge(), question)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	contexts := FormatContexts(items)

	if s.augmenter != nil {
		extra, err := s.augmenter.Augment(ctx, repos.Intel(), question)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		contexts = append(contexts, extra...)
	}

	answer := s.synthesis.Synthesize(ctx, question, contexts)
	span.SetOutcome(string(answer.Outcome))
	s.logger.Debug("question answered",
		zap.Int("corpus_items", len(items)),
		zap.Int("contexts", len(contexts)),
		zap.String("outcome", string(answer.Outcome)),
	)
	return answer, nil
}

// Brief compiles the brief from the same handle.
func (s *AssistantService) Brief(ctx context.Context, repos Repositories) (*domain.BriefResult, error) {
	return s.briefs.Compile(ctx, repos)
}

// LatestBrief returns the last archived brief.
func (s *AssistantService) LatestBrief(ctx context.Context) (*domain.BriefResult, error) {
	return s.briefs.Latest(ctx)
}
