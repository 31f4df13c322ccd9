package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIEmbedModel = openai.SmallEmbedding3
	DefaultOpenAIChatModel  = openai.GPT4oMini
)

// OpenAIAPI is the subset of *openai.Client used here.
type OpenAIAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIConfig struct {
	APIKey     string
	EmbedModel string
	ChatModel  string
	Dimensions int
}

// OpenAIClient implements Embedder and Generator on the OpenAI API. Vectors
// are requested at the configured width so they fit the same column as
// Gemini embeddings.
type OpenAIClient struct {
	api        OpenAIAPI
	embedModel openai.EmbeddingModel
	chatModel  string
	dimensions int
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	return newOpenAIClient(openai.NewClient(cfg.APIKey), cfg)
}

func newOpenAIClient(api OpenAIAPI, cfg OpenAIConfig) *OpenAIClient {
	c := &OpenAIClient{
		api:        api,
		embedModel: openai.EmbeddingModel(cfg.EmbedModel),
		chatModel:  cfg.ChatModel,
		dimensions: cfg.Dimensions,
	}
	if c.embedModel == "" {
		c.embedModel = DefaultOpenAIEmbedModel
	}
	if c.chatModel == "" {
		c.chatModel = DefaultOpenAIChatModel
	}
	if c.dimensions <= 0 {
		c.dimensions = DefaultDimensions
	}
	return c
}

// Embed ignores task; OpenAI embeddings are symmetric.
func (c *OpenAIClient) Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      c.embedModel,
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	vec := resp.Data[0].Embedding
	if err := checkDimensions(vec, c.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (Generation, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   int(opts.MaxOutputTokens),
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return Generation{Outcome: domain.OutcomeUpstreamError}, fmt.Errorf("chat generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Generation{Outcome: domain.OutcomeEmpty}, nil
	}
	choice := resp.Choices[0]
	gen := Generation{FinishReason: strings.ToUpper(string(choice.FinishReason))}
	if choice.FinishReason == openai.FinishReasonContentFilter {
		gen.Outcome = domain.OutcomeBlocked
		return gen, nil
	}
	gen.Text = strings.TrimSpace(choice.Message.Content)
	if gen.Text == "" {
		gen.Outcome = domain.OutcomeEmpty
		return gen, nil
	}
	gen.Outcome = domain.OutcomeOK
	return gen, nil
}
