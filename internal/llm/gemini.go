package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"google.golang.org/genai"
)

const (
	DefaultGeminiEmbedModel = "gemini-embedding-001"
	DefaultGeminiChatModel  = "gemini-2.0-flash"
)

var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
	"BLOCKED":            true,
}

// GeminiModels is the subset of *genai.Models used here.
type GeminiModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey     string
	EmbedModel string
	ChatModel  string
	Dimensions int
}

// GeminiClient implements Embedder and Generator on the Gemini API.
type GeminiClient struct {
	models     GeminiModels
	embedModel string
	chatModel  string
	dimensions int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiClient(client.Models, cfg), nil
}

func newGeminiClient(models GeminiModels, cfg GeminiConfig) *GeminiClient {
	c := &GeminiClient{
		models:     models,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		dimensions: cfg.Dimensions,
	}
	if c.embedModel == "" {
		c.embedModel = DefaultGeminiEmbedModel
	}
	if c.chatModel == "" {
		c.chatModel = DefaultGeminiChatModel
	}
	if c.dimensions <= 0 {
		c.dimensions = DefaultDimensions
	}
	return c
}

func (c *GeminiClient) Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	dim := int32(c.dimensions)
	resp, err := c.models.EmbedContent(ctx, c.embedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: string(task), OutputDimensionality: &dim},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, ErrNoCandidates
	}
	vec := resp.Embeddings[0].Values
	if err := checkDimensions(vec, c.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (Generation, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	resp, err := c.models.GenerateContent(ctx, c.chatModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		return Generation{Outcome: domain.OutcomeUpstreamError}, fmt.Errorf("chat generation failed: %w", err)
	}
	return geminiGeneration(resp), nil
}

func geminiGeneration(resp *genai.GenerateContentResponse) Generation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return Generation{FinishReason: string(resp.PromptFeedback.BlockReason), Outcome: domain.OutcomeBlocked}
		}
		return Generation{Outcome: domain.OutcomeEmpty}
	}
	cand := resp.Candidates[0]
	gen := Generation{FinishReason: strings.ToUpper(string(cand.FinishReason))}
	if blockedFinishReasons[gen.FinishReason] {
		gen.Outcome = domain.OutcomeBlocked
		return gen
	}
	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		gen.Text = strings.TrimSpace(sb.String())
	}
	if gen.Text == "" {
		gen.Outcome = domain.OutcomeEmpty
		return gen
	}
	gen.Outcome = domain.OutcomeOK
	return gen
}
