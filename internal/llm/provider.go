package llm

import (
	"context"

	"github.com/cloo-solutions/onboardai/internal/config"
	"go.uber.org/zap"
)

// Providers bundles the embedder and generator chosen from configuration.
type Providers struct {
	Embedder  Embedder
	Generator Generator
	Name      string
}

// NewProviders selects the configured provider. A missing credential or a
// client construction failure yields no-op implementations.
func NewProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) Providers {
	switch {
	case cfg.LLMProvider == "openai" && cfg.HasOpenAI():
		c := NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			EmbedModel: cfg.OpenAIEmbedModel,
			ChatModel:  cfg.OpenAIChatModel,
			Dimensions: cfg.EmbedDimensions,
		})
		return Providers{Embedder: c, Generator: c, Name: "openai"}
	case cfg.LLMProvider != "openai" && cfg.HasGemini():
		c, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			EmbedModel: cfg.GeminiEmbedModel,
			ChatModel:  cfg.GeminiChatModel,
			Dimensions: cfg.EmbedDimensions,
		})
		if err != nil {
			logger.Warn("gemini client unavailable, using no-op provider", zap.Error(err))
			break
		}
		return Providers{Embedder: c, Generator: c, Name: "gemini"}
	}
	logger.Info("no llm credential configured, embeddings and generation disabled", zap.String("provider", cfg.LLMProvider))
	return Providers{Embedder: NoOpEmbedder{}, Generator: NoOpGenerator{}, Name: "none"}
}
