package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/onboardai/internal/composio"
	"github.com/cloo-solutions/onboardai/internal/config"
	"github.com/cloo-solutions/onboardai/internal/database"
	"github.com/cloo-solutions/onboardai/internal/jobs"
	"github.com/cloo-solutions/onboardai/internal/llm"
	"github.com/cloo-solutions/onboardai/internal/repository"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/storage"
	"github.com/cloo-solutions/onboardai/internal/telemetry"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// App holds the wired process components shared by the daemon commands.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Pool         *pgxpool.Pool
	Handles      *repository.PoolHandles
	Ingestion    *service.IngestionService
	Intel        *service.IntelService
	Assistant    *jobs.BoundedAssistant
	Executor     *jobs.Executor
	SyncSchedule cron.Schedule

	closers []func()
}

type appOptions struct {
	migrate bool
}

// loadApp reads configuration, connects to the database and builds every
// service. Close releases what it opened.
func loadApp(ctx context.Context, opts appOptions) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := telemetry.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}
	app.closers = append(app.closers, func() { _ = logger.Sync() })

	if err := app.initTelemetry(); err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
	}

	if opts.migrate {
		if err := database.Migrate(cfg.DatabaseURL, database.DefaultMigrationsSource, logger); err != nil {
			app.Close()
			return nil, err
		}
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Pool = pool
	app.closers = append(app.closers, pool.Close)
	logger.Info("connected to database")

	if err := app.wire(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) initTelemetry() error {
	if a.Config.SentryDSN == "" {
		return nil
	}
	sampleRate := 0.1
	if a.Config.Environment == "development" {
		sampleRate = 1.0
	}
	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              a.Config.SentryDSN,
		Environment:      a.Config.Environment,
		TracesSampleRate: sampleRate,
		Debug:            a.Config.Debug,
		Logger:           a.Logger.Named("sentry"),
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)
	return nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return err
	}

	providers := llm.NewProviders(ctx, cfg, logger.Named("llm"))
	logger.Info("llm provider selected", zap.String("provider", providers.Name))

	tools := composio.NewClient(cfg.ComposioAPIKey,
		composio.WithBaseURL(cfg.ComposioBaseURL),
		composio.WithRateLimit(cfg.ComposioRPS),
		composio.WithLogger(logger.Named("composio")),
	)
	web := youcom.NewClient(cfg.YouAPIKey,
		youcom.WithBaseURL(cfg.YouBaseURL),
		youcom.WithNewsBaseURL(cfg.YouNewsBaseURL),
		youcom.WithLogger(logger.Named("youcom")),
	)

	var archive service.BriefArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("brief archive ready", zap.String("bucket", cfg.S3Bucket))
		archive = storage.NewBriefArchive(s3Client)
	}

	a.SyncSchedule = service.ParseSchedule(cfg.SyncSchedule)
	a.Handles = repository.NewPoolHandles(a.Pool)

	retrieval := service.NewRetrievalService(providers.Embedder, logger.Named("retrieval"))
	augmenter := service.NewCompetitiveAugmenter(web, sources, logger.Named("competitive"))
	synthesis := service.NewSynthesisService(providers.Generator, sources.Company, sources.SearchDomain, logger.Named("synthesis"))
	briefs := service.NewBriefCompiler(providers.Generator, archive, logger.Named("brief"))
	assistant := service.NewAssistantService(retrieval, augmenter, synthesis, briefs, sources, logger.Named("assistant"))

	a.Ingestion = service.NewIngestionService(
		tools,
		retrieval,
		repository.NewTxRunner(a.Pool),
		repository.NewSyncStateRepository(a.Pool),
		sources,
		a.SyncSchedule,
		logger.Named("ingestion"),
	)
	a.Intel = service.NewIntelService(web, repository.NewCompetitorIntelRepository(a.Pool), sources, logger.Named("intel"))

	a.Executor = jobs.NewExecutor(a.Handles, cfg.Workers, logger.Named("executor"))
	a.Assistant = jobs.NewBoundedAssistant(a.Executor, assistant, cfg.AskTimeout, cfg.BriefTimeout, logger.Named("assistant"))

	logger.Info("components configured",
		zap.Bool("composio", tools.Configured()),
		zap.Bool("you_com", web.Configured()),
		zap.Bool("generator", llm.IsConfigured(providers.Generator)),
		zap.Bool("brief_archive", archive != nil),
		zap.Int("workers", cfg.Workers),
	)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
