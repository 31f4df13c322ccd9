package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestAssistant(handles *fakeHandles, askTimeout, briefTimeout time.Duration) *BoundedAssistant {
	sources := config.DefaultSources()
	assistant := service.NewAssistantService(
		service.NewRetrievalService(nil, nil),
		nil,
		service.NewSynthesisService(nil, sources.Company, sources.SearchDomain, nil),
		service.NewBriefCompiler(nil, nil, nil),
		sources,
		nil,
	)
	return NewBoundedAssistant(NewExecutor(handles, DefaultWorkers, nil), assistant, askTimeout, briefTimeout, nil)
}

func TestBoundedAssistant_EmptyQuestion(t *testing.T) {
	handles := newFakeHandles(nil)
	b := newTestAssistant(handles, time.Second, time.Second)

	ans := b.Ask(context.Background(), "   ")

	assert.Equal(t, domain.OutcomeEmpty, ans.Outcome)
	assert.Equal(t, "Please ask a question about Velora.", ans.Answer)
	assert.Equal(t, int32(0), handles.acquired.Load())
}

func TestBoundedAssistant_AskFallsBackToExtract(t *testing.T) {
	defer goleak.VerifyNone(t)

	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		return corpusItems(), nil
	})
	b := newTestAssistant(handles, time.Second, time.Second)

	ans := b.Ask(context.Background(), "How often do we ship?")

	assert.Equal(t, domain.OutcomeUnconfigured, ans.Outcome)
	assert.Contains(t, ans.Answer, "Velora ships weekly")
	require.Len(t, ans.Citations, 1)
	assert.Equal(t, int32(1), handles.released.Load())
}

func TestBoundedAssistant_AskTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	unblock := make(chan struct{})
	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		<-unblock
		return nil, nil
	})
	b := newTestAssistant(handles, 30*time.Millisecond, time.Second)

	ans := b.Ask(context.Background(), "What is our roadmap?")

	assert.Equal(t, MsgAskTimeout, ans.Answer)
	assert.Equal(t, domain.OutcomeTimeout, ans.Outcome)
	assert.Empty(t, ans.Citations)

	close(unblock)
	require.Eventually(t, func() bool { return handles.released.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBoundedAssistant_AskStoreFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		return nil, errors.New("connection refused")
	})
	b := newTestAssistant(handles, time.Second, time.Second)

	ans := b.Ask(context.Background(), "Who owns billing?")

	assert.Equal(t, MsgAskFailed, ans.Answer)
	assert.Equal(t, domain.OutcomeUpstreamError, ans.Outcome)
	assert.NotNil(t, ans.Citations)
}

func TestBoundedAssistant_BriefTriggerReturnsBrief(t *testing.T) {
	defer goleak.VerifyNone(t)

	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		return corpusItems(), nil
	})
	b := newTestAssistant(handles, time.Second, time.Second)

	ans := b.Ask(context.Background(), "Give me the brief please")

	require.NotNil(t, ans.Brief)
	assert.Equal(t, domain.OutcomeUnconfigured, ans.Outcome)
	assert.Equal(t, []string{service.BriefMsgNoGenerator}, ans.Brief.Summary)
	assert.Empty(t, ans.Answer)
}

func TestBoundedAssistant_BriefTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	unblock := make(chan struct{})
	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		<-unblock
		return nil, nil
	})
	b := newTestAssistant(handles, time.Second, 30*time.Millisecond)

	res := b.Brief(context.Background())

	assert.Equal(t, domain.OutcomeTimeout, res.Outcome)
	assert.Equal(t, []string{MsgBriefTimeout}, res.Brief.Summary)
	assert.Empty(t, res.Brief.Risks)
	assert.False(t, res.GeneratedAt.IsZero())

	ans := b.Ask(context.Background(), "daily brief")
	assert.Equal(t, MsgBriefTimeout, ans.Answer)
	assert.Equal(t, domain.OutcomeTimeout, ans.Outcome)

	close(unblock)
	require.Eventually(t, func() bool { return handles.released.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBoundedAssistant_BriefStoreFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	handles := newFakeHandles(func(ctx context.Context) ([]*domain.KnowledgeItem, error) {
		return nil, errors.New("relation does not exist")
	})
	b := newTestAssistant(handles, time.Second, time.Second)

	res := b.Brief(context.Background())

	assert.Equal(t, domain.OutcomeUpstreamError, res.Outcome)
	assert.Equal(t, []string{MsgBriefFailed}, res.Brief.Summary)
}

func TestBoundedAssistant_LatestBriefWithoutArchive(t *testing.T) {
	b := newTestAssistant(newFakeHandles(nil), time.Second, time.Second)

	_, err := b.LatestBrief(context.Background())

	assert.ErrorIs(t, err, domain.ErrBriefNotArchived)
}
