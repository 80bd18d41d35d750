package cli

import (
	"context"
	"time"

	analysisapp "github.com/clauselens/clauselens/internal/application/analysis"
	"github.com/clauselens/clauselens/internal/application/extraction"
	qaapp "github.com/clauselens/clauselens/internal/application/qa"
	"github.com/clauselens/clauselens/internal/config"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/database/postgres"
	"github.com/clauselens/clauselens/internal/infrastructure/database/postgres/repositories"
	"github.com/clauselens/clauselens/internal/infrastructure/database/redis"
	"github.com/clauselens/clauselens/internal/infrastructure/embedding"
	"github.com/clauselens/clauselens/internal/infrastructure/messaging/kafka"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/prometheus"
)

// connectTimeout bounds infrastructure dial-and-ping during startup.
const connectTimeout = 10 * time.Second

// App is the composition root: configuration, logger, repositories, and the
// application services, with everything that needs closing registered in
// reverse-construction order.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Contracts       domain.ContractRepository
	Clauses         domain.ClauseRepository
	Conflicts       domain.ConflictRepository
	Interpretations domain.InterpretationRepository
	QuestionAnswers domain.QuestionAnswerRepository

	Extraction *extraction.Service
	Analysis   *analysisapp.Service
	QA         *qaapp.Service

	closers []func()
}

// Close releases held resources in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// buildApp wires the full application from configuration.
func buildApp(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)

	app := &App{Config: cfg, Logger: logger}
	app.closers = append(app.closers, func() { _ = logger.Sync() })

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := postgres.NewPool(connectCtx, cfg.Database, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, pool.Close)

	// The vector cache is optional: embedding works uncached when Redis is
	// unavailable.
	var store embedding.VectorStore
	if cfg.Embedding.Enabled && cfg.Embedding.CacheEnabled {
		client, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, embedding cache disabled", logging.Err(err))
		} else {
			app.closers = append(app.closers, func() { _ = client.Close() })
			store = redis.NewVectorCache(client, logger, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL)
		}
	}
	provider := embedding.NewProvider(cfg.Embedding, store, logger)

	producer := kafka.NewProducer(cfg.Kafka, logger)
	app.closers = append(app.closers, func() { _ = producer.Close() })

	metrics := prometheus.NewMetrics()
	if srv := prometheus.NewServer(cfg.Metrics, metrics, logger); srv != nil {
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		app.closers = append(app.closers, func() {
			_ = srv.Shutdown(context.Background())
		})
	}

	app.Contracts = repositories.NewContractRepository(pool, logger)
	app.Clauses = repositories.NewClauseRepository(pool, logger)
	app.Conflicts = repositories.NewConflictRepository(pool, logger)
	app.Interpretations = repositories.NewInterpretationRepository(pool, logger)
	app.QuestionAnswers = repositories.NewQuestionAnswerRepository(pool, logger)
	uow := repositories.NewTxManager(pool, logger)

	app.Extraction = extraction.NewService(
		app.Contracts, app.Clauses, uow, provider, producer, metrics, logger)
	app.Analysis = analysisapp.NewService(
		app.Contracts, app.Clauses, app.Conflicts, app.Interpretations, uow,
		cfg.Analysis, producer, metrics, logger)
	app.QA = qaapp.NewService(
		app.Contracts, app.Clauses, app.Conflicts, app.QuestionAnswers,
		provider, cfg.Analysis.TopK, producer, metrics, logger)

	return app, nil
}
