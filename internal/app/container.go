// Package app wires configuration, storage, transport and handlers into one
// container shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/classifier/infrastructure/gemini"
	"github.com/felixgeelhaar/synapse/internal/classifier/infrastructure/remote"
	"github.com/felixgeelhaar/synapse/internal/enrichment"
	entryCommands "github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	entriesDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	goalCommands "github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/synapse/internal/goals/application/queries"
	goalsDomain "github.com/felixgeelhaar/synapse/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	taxonomyCommands "github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	taxonomyQueries "github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recentEntriesPerSweep bounds how many of a user's newest entries the
// periodic sweep looks at.
const recentEntriesPerSweep = 50

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	// Prometheus is set when the container created its own registry.
	Prometheus *observability.PrometheusMetrics
	Health     *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	EntryRepo    entriesDomain.Repository
	GoalRepo     goalsDomain.Repository
	CategoryRepo taxonomyDomain.CategoryRepository
	SubjectRepo  taxonomyDomain.SubjectRepository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Cached read models
	Views *cache.Views

	// Events
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor

	// Classification
	Classifier   classifierDomain.Classifier
	ModelBreaker *gemini.BreakerModel

	// Capture
	CaptureHandler *captureApp.CaptureHandler

	// Entry Command Handlers
	ChangeStatusHandler *entryCommands.ChangeStatusHandler
	UpdateEntryHandler  *entryCommands.UpdateEntryHandler
	DeleteEntryHandler  *entryCommands.DeleteEntryHandler
	EnrichEntryHandler  *entryCommands.EnrichEntryHandler

	// Entry Query Handlers
	ListEntriesHandler *entryQueries.ListEntriesHandler
	GetEntryHandler    *entryQueries.GetEntryHandler
	EntryStatsHandler  *entryQueries.EntryStatsHandler

	// Goal Handlers
	AdjustGoalProgressHandler *goalCommands.AdjustGoalProgressHandler
	DeactivateGoalHandler     *goalCommands.DeactivateGoalHandler
	DeleteGoalHandler         *goalCommands.DeleteGoalHandler
	ListGoalsHandler          *goalQueries.ListGoalsHandler

	// Taxonomy Handlers
	CreateCategoryHandler *taxonomyCommands.CreateCategoryHandler
	CreateSubjectHandler  *taxonomyCommands.CreateSubjectHandler
	SeedDefaultsHandler   *taxonomyCommands.SeedDefaultsHandler
	ListCategoriesHandler *taxonomyQueries.ListCategoriesHandler
	ListSubjectsHandler   *taxonomyQueries.ListSubjectsHandler

	// Enrichment
	Sweeper *enrichment.Sweeper
}

// Option overrides a dependency the container would otherwise build.
type Option func(*options)

type options struct {
	classifier classifierDomain.Classifier
	metrics    observability.Metrics
	clock      func() time.Time
}

// WithClassifier replaces the configured classifier.
func WithClassifier(c classifierDomain.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithMetrics replaces the Prometheus registry.
func WithMetrics(m observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock fixes the time used for goal periods.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// NewContainer connects to storage, applies migrations and builds every
// handler. The outbox processor is built but not started.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}
	if o.metrics != nil {
		c.Metrics = o.metrics
	} else {
		c.Prometheus = observability.NewPrometheusMetrics("synapse")
		c.Metrics = c.Prometheus
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Health.Register("database", observability.PingChecker(conn.Ping, true))

	if err := c.initViews(ctx); err != nil {
		c.Close()
		return nil, err
	}

	factory, err := NewRepositoryFactory(conn)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.EntryRepo = factory.EntryRepository()
	c.GoalRepo = factory.GoalRepository()
	c.CategoryRepo = factory.CategoryRepository()
	c.SubjectRepo = factory.SubjectRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	c.initEvents(ctx)

	if o.classifier != nil {
		c.Classifier = o.classifier
	} else if c.Classifier, err = c.newClassifier(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initHandlers(o.clock); err != nil {
		c.Close()
		return nil, err
	}

	if c.IsLocalMode() {
		if err := c.seedDefaultUser(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"cache", c.cacheBackend(),
		"events", c.eventsBackend(),
	)
	return c, nil
}

func (c *Container) initViews(ctx context.Context) error {
	var store cache.Store = cache.NewMemoryStore()

	if c.Config.RedisURL != "" {
		client, err := c.connectRedis(ctx)
		switch {
		case err == nil:
			c.RedisClient = client
			store = cache.NewRedisStore(client)
			c.Health.Register("redis", observability.PingChecker(func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}, false))
			c.Logger.Info("connected to Redis")
		case c.Config.IsDevelopment():
			c.Logger.Warn("Redis not available, view cache will stay in memory", "error", err)
		default:
			return err
		}
	}

	c.Views = cache.NewViews(store, c.Config.CacheTTL, c.Logger, c.Metrics)
	return nil
}

func (c *Container) connectRedis(ctx context.Context) (*redis.Client, error) {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// initEvents picks the outbox transport. Without a broker the in-process bus
// feeds the cache invalidator directly.
func (c *Container) initEvents(ctx context.Context) {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(ctx, c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
		} else {
			c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		}
	}
	if c.EventPublisher == nil {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
		c.InProcessEventBus.RegisterConsumer(cache.NewInvalidator(c.Views))
		c.EventPublisher = c.InProcessEventBus
	}

	procCfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		procCfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		procCfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		procCfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, procCfg, c.Logger).WithMetrics(c.Metrics)
}

// newClassifier builds the remote client when a gateway URL is configured,
// otherwise the in-process gateway.
func (c *Container) newClassifier(ctx context.Context) (classifierDomain.Classifier, error) {
	if c.Config.GatewayURL != "" {
		c.Logger.Info("using remote classifier gateway", "url", c.Config.GatewayURL)
		return remote.NewClient(c.Config.GatewayURL, c.Config.GatewayTimeout), nil
	}

	gw, breaker, err := NewGateway(ctx, c.Config, c.Logger, c.Metrics, c.Health)
	if err != nil {
		return nil, err
	}
	c.ModelBreaker = breaker
	return gw, nil
}

func (c *Container) initHandlers(now func() time.Time) error {
	c.CaptureHandler = captureApp.NewCaptureHandler(captureApp.CaptureDeps{
		Classifier:   c.Classifier,
		EntryRepo:    c.EntryRepo,
		GoalRepo:     c.GoalRepo,
		CategoryRepo: c.CategoryRepo,
		SubjectRepo:  c.SubjectRepo,
		OutboxRepo:   c.OutboxRepo,
		UnitOfWork:   c.UnitOfWork,
		Views:        c.Views,
		Logger:       c.Logger,
		Metrics:      c.Metrics,
	}).WithClock(now)

	// Create entry command handlers
	c.ChangeStatusHandler = entryCommands.NewChangeStatusHandler(c.EntryRepo, c.OutboxRepo, c.UnitOfWork, c.Views)
	c.UpdateEntryHandler = entryCommands.NewUpdateEntryHandler(c.EntryRepo, c.CategoryRepo, c.SubjectRepo, c.OutboxRepo, c.UnitOfWork, c.Views)
	c.DeleteEntryHandler = entryCommands.NewDeleteEntryHandler(c.EntryRepo, c.OutboxRepo, c.UnitOfWork, c.Views)
	c.EnrichEntryHandler = entryCommands.NewEnrichEntryHandler(c.EntryRepo, c.OutboxRepo, c.UnitOfWork, c.Views)

	// Create entry query handlers
	c.ListEntriesHandler = entryQueries.NewListEntriesHandler(c.EntryRepo, c.CategoryRepo, c.SubjectRepo, c.Views)
	c.GetEntryHandler = entryQueries.NewGetEntryHandler(c.EntryRepo)
	c.EntryStatsHandler = entryQueries.NewEntryStatsHandler(c.EntryRepo, c.Views)

	// Create goal handlers
	c.AdjustGoalProgressHandler = goalCommands.NewAdjustGoalProgressHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork, c.Views).WithClock(now)
	c.DeactivateGoalHandler = goalCommands.NewDeactivateGoalHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork, c.Views)
	c.DeleteGoalHandler = goalCommands.NewDeleteGoalHandler(c.GoalRepo, c.OutboxRepo, c.UnitOfWork, c.Views)
	c.ListGoalsHandler = goalQueries.NewListGoalsHandler(c.GoalRepo, c.Views)

	// Create taxonomy handlers
	c.CreateCategoryHandler = taxonomyCommands.NewCreateCategoryHandler(c.CategoryRepo, c.OutboxRepo, c.UnitOfWork)
	c.CreateSubjectHandler = taxonomyCommands.NewCreateSubjectHandler(c.CategoryRepo, c.SubjectRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListCategoriesHandler = taxonomyQueries.NewListCategoriesHandler(c.CategoryRepo)
	c.ListSubjectsHandler = taxonomyQueries.NewListSubjectsHandler(c.CategoryRepo, c.SubjectRepo)
	seed, err := taxonomyCommands.NewSeedDefaultsHandler(c.CategoryRepo, c.OutboxRepo, c.UnitOfWork)
	if err != nil {
		return fmt.Errorf("failed to load default categories: %w", err)
	}
	c.SeedDefaultsHandler = seed

	// Every list load hands its entries to the sweeper.
	c.Sweeper = enrichment.NewSweeper(c.Classifier, c.EnrichEntryHandler, enrichment.Config{
		BatchSize: c.Config.SweepBatchSize,
		Debounce:  c.Config.SweepDebounce,
		MaxWait:   c.Config.SweepMaxWait,
	}, c.Logger, c.Metrics)
	c.ListEntriesHandler.WithLoadHook(c.Sweeper.Trigger)
	return nil
}

func (c *Container) seedDefaultUser(ctx context.Context) error {
	userID, err := c.Config.DefaultUser()
	if err != nil {
		return err
	}
	result, err := c.SeedDefaultsHandler.Handle(ctx, taxonomyCommands.SeedDefaultsCommand{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}
	if len(result.Created) > 0 {
		c.Logger.Info("seeded default categories", "user_id", userID, "categories", result.Created)
	}
	return nil
}

// IsLocalMode reports whether the container runs on the embedded SQLite file.
func (c *Container) IsLocalMode() bool {
	return c.DBDriver == database.DriverSQLite
}

// DefaultUserID returns the configured single user.
func (c *Container) DefaultUserID() uuid.UUID {
	id, err := c.Config.DefaultUser()
	if err != nil {
		return uuid.Nil
	}
	return id
}

// SweepOnce runs one enrichment pass over every user's recent entries.
func (c *Container) SweepOnce(ctx context.Context) (int, error) {
	return c.Sweeper.SweepAll(ctx, c.EntryRepo, recentEntriesPerSweep)
}

// CleanupOutbox deletes published messages older than the retention window.
func (c *Container) CleanupOutbox(ctx context.Context) (int64, error) {
	return c.OutboxRepo.DeleteOld(ctx, c.Config.OutboxRetention)
}

// ReportOutbox logs and exports the outbox backlog.
func (c *Container) ReportOutbox(ctx context.Context) {
	pending, dead, err := c.OutboxRepo.Counts(ctx)
	if err != nil {
		c.Logger.WarnContext(ctx, "failed to count outbox messages", "error", err)
		return
	}
	c.Metrics.Gauge(observability.MetricOutboxPending, float64(pending))
	stats := c.OutboxProcessor.GetStats()
	c.Logger.InfoContext(ctx, "outbox stats",
		"pending", pending,
		"dead", dead,
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"lag_seconds", stats.LagSeconds,
	)
}

func (c *Container) cacheBackend() string {
	if c.RedisClient != nil {
		return "redis"
	}
	return "memory"
}

func (c *Container) eventsBackend() string {
	if c.InProcessEventBus != nil {
		return "in-process"
	}
	return "rabbitmq"
}

// Close stops background work and releases connections.
func (c *Container) Close() {
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}

	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
