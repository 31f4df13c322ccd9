package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is built once at process start and passed to every component.
// Each variable is read as ONBOARD_<NAME>, falling back to the bare <NAME>.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	ComposioAPIKey  string  `envconfig:"COMPOSIO_API_KEY"`
	ComposioBaseURL string  `envconfig:"COMPOSIO_BASE_URL" default:"https://backend.composio.dev/api/v3"`
	ComposioRPS     float64 `envconfig:"COMPOSIO_RPS" default:"5"`

	YouAPIKey      string `envconfig:"YOU_API_KEY"`
	YouBaseURL     string `envconfig:"YOU_BASE_URL" default:"https://ydc-index.io/v1"`
	YouNewsBaseURL string `envconfig:"YOU_NEWS_BASE_URL" default:"https://api.ydc-index.io"`

	LLMProvider      string `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiEmbedModel string `envconfig:"GEMINI_EMBED_MODEL" default:"gemini-embedding-001"`
	GeminiChatModel  string `envconfig:"GEMINI_CHAT_MODEL" default:"gemini-2.0-flash"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIEmbedModel string `envconfig:"OPENAI_EMBED_MODEL" default:"text-embedding-3-small"`
	OpenAIChatModel  string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	EmbedDimensions  int    `envconfig:"EMBED_DIMENSIONS" default:"768"`

	Workers      int           `envconfig:"WORKERS" default:"2"`
	AskTimeout   time.Duration `envconfig:"ASK_TIMEOUT" default:"50s"`
	BriefTimeout time.Duration `envconfig:"BRIEF_TIMEOUT" default:"65s"`

	SchedulerEnabled bool   `envconfig:"SCHEDULER_ENABLED" default:"false"`
	SyncSchedule     string `envconfig:"SYNC_SCHEDULE" default:"@every 6h"`
	IntelSchedule    string `envconfig:"INTEL_SCHEDULE" default:"@every 24h"`

	AdminToken  string `envconfig:"ADMIN_TOKEN"`
	SourcesFile string `envconfig:"SOURCES_FILE"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"onboard-briefs"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ONBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasComposio() bool {
	return c.ComposioAPIKey != ""
}

func (c *Config) HasYouCom() bool {
	return c.YouAPIKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasGenerator reports whether the selected LLM provider has a credential.
func (c *Config) HasGenerator() bool {
	if c.LLMProvider == "openai" {
		return c.HasOpenAI()
	}
	return c.HasGemini()
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasAdminToken() bool {
	return c.AdminToken != ""
}
