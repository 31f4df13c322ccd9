package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"go.uber.org/zap"
)

const (
	DefaultAskTimeout   = 50 * time.Second
	DefaultBriefTimeout = 65 * time.Second
)

// Canned replies for work that timed out or failed.
const (
	MsgAskTimeout   = "The request took too long. Please try again or ask a shorter question."
	MsgAskFailed    = "The knowledge base is unavailable. Ensure the database is running and seeded."
	MsgBriefTimeout = "Brief generation timed out. Try again."
	MsgBriefFailed  = "Brief generation failed. Ensure DB and GEMINI_API_KEY are set."
)

// BoundedAssistant runs ask and brief requests on the executor. Its methods
// never fail: faults and timeouts become canned replies.
type BoundedAssistant struct {
	exec         *Executor
	assistant    *service.AssistantService
	askTimeout   time.Duration
	briefTimeout time.Duration
	logger       *zap.Logger
}

func NewBoundedAssistant(exec *Executor, assistant *service.AssistantService, askTimeout, briefTimeout time.Duration, logger *zap.Logger) *BoundedAssistant {
	if askTimeout <= 0 {
		askTimeout = DefaultAskTimeout
	}
	if briefTimeout <= 0 {
		briefTimeout = DefaultBriefTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoundedAssistant{
		exec:         exec,
		assistant:    assistant,
		askTimeout:   askTimeout,
		briefTimeout: briefTimeout,
		logger:       logger,
	}
}

// Ask answers question. Brief trigger phrases return the brief instead.
func (b *BoundedAssistant) Ask(ctx context.Context, question string) *domain.Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return b.assistant.EmptyQuestionAnswer()
	}
	if b.assistant.IsBriefRequest(question) {
		res, err := b.runBrief(ctx)
		switch {
		case errors.Is(err, ErrTimedOut):
			return cannedAnswer(MsgBriefTimeout, domain.OutcomeTimeout)
		case err != nil:
			return cannedAnswer(MsgBriefFailed, domain.OutcomeUpstreamError)
		}
		return &domain.Answer{Answer: "", Citations: []domain.Citation{}, Brief: res.Brief, Outcome: res.Outcome}
	}

	ans, err := Run(ctx, b.exec, b.askTimeout, func(ctx context.Context, repos service.Repositories) (*domain.Answer, error) {
		return b.assistant.Ask(ctx, repos, question)
	})
	switch {
	case errors.Is(err, ErrTimedOut):
		return cannedAnswer(MsgAskTimeout, domain.OutcomeTimeout)
	case err != nil:
		b.logger.Error("ask failed", zap.Error(err))
		return cannedAnswer(MsgAskFailed, domain.OutcomeUpstreamError)
	}
	return ans
}

// Brief compiles the brief.
func (b *BoundedAssistant) Brief(ctx context.Context) *domain.BriefResult {
	res, err := b.runBrief(ctx)
	switch {
	case errors.Is(err, ErrTimedOut):
		return &domain.BriefResult{Brief: domain.PlaceholderBrief(MsgBriefTimeout), Outcome: domain.OutcomeTimeout, GeneratedAt: time.Now().UTC()}
	case err != nil:
		return &domain.BriefResult{Brief: domain.PlaceholderBrief(MsgBriefFailed), Outcome: domain.OutcomeUpstreamError, GeneratedAt: time.Now().UTC()}
	}
	return res
}

func (b *BoundedAssistant) runBrief(ctx context.Context) (*domain.BriefResult, error) {
	res, err := Run(ctx, b.exec, b.briefTimeout, func(ctx context.Context, repos service.Repositories) (*domain.BriefResult, error) {
		return b.assistant.Brief(ctx, repos)
	})
	if err != nil && !errors.Is(err, ErrTimedOut) {
		b.logger.Error("brief failed", zap.Error(err))
	}
	return res, err
}

// LatestBrief returns the last archived brief.
func (b *BoundedAssistant) LatestBrief(ctx context.Context) (*domain.BriefResult, error) {
	return b.assistant.LatestBrief(ctx)
}

func cannedAnswer(msg string, outcome domain.Outcome) *domain.Answer {
	return &domain.Answer{Answer: msg, Citations: []domain.Citation{}, Outcome: outcome}
}
