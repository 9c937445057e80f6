package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/africa-markett/storefront/internal/config"
	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/event"
	handler "github.com/africa-markett/storefront/internal/handler/http"
	"github.com/africa-markett/storefront/internal/repository"
	"github.com/africa-markett/storefront/internal/repository/memory"
	"github.com/africa-markett/storefront/internal/repository/postgres"
	redisrepo "github.com/africa-markett/storefront/internal/repository/redis"
	"github.com/africa-markett/storefront/internal/seed"
	"github.com/africa-markett/storefront/internal/service"
	"github.com/africa-markett/storefront/pkg/database"
	"github.com/africa-markett/storefront/pkg/health"
	pkgkafka "github.com/africa-markett/storefront/pkg/kafka"
	"github.com/africa-markett/storefront/pkg/middleware"
	"github.com/africa-markett/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool      // nil unless REVIEW_SOURCE or ORDER_STORE is postgres
	rdb            *redis.Client      // nil unless SESSION_STORE=redis
	producer       *pkgkafka.Producer // nil unless KAFKA_ENABLED
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	products, err := seed.Products()
	if err != nil {
		return nil, fmt.Errorf("load seed products: %w", err)
	}
	for i := range products {
		if products[i].Currency == "" {
			products[i].Currency = cfg.Currency
		}
	}
	reviews, err := seed.Reviews()
	if err != nil {
		return nil, fmt.Errorf("load seed reviews: %w", err)
	}

	productRepo, err := memory.NewProductRepository(products)
	if err != nil {
		return nil, fmt.Errorf("build product catalog: %w", err)
	}

	healthHandler := health.NewHandler()

	reviewRepo, err := a.initReviewRepository(ctx, reviews, healthHandler)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	configRepo, err := a.initConfigurationRepository(ctx, healthHandler)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	orderRepo, err := a.initOrderRepository(ctx, healthHandler)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	// Initialize Kafka producer.
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	}
	eventProducer := event.NewProducer(a.producer, logger)
	if eventProducer.Enabled() {
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, domain events will be dropped")
	}

	// Build the dependency graph.
	catalogService := service.NewCatalogService(productRepo, logger, cfg.Currency)
	reviewService := service.NewReviewService(reviewRepo, logger, cfg.ReviewsDefaultLimit, cfg.ReviewsMaxLimit)
	configuratorService := service.NewConfiguratorService(productRepo, configRepo, orderRepo, eventProducer, logger, cfg.ShippingFee)
	orderService := service.NewOrderService(orderRepo, eventProducer, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(catalogService, reviewService, configuratorService, orderService, healthHandler, logger, handler.RouterConfig{
		ServiceName:    serviceName,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		AdminCIDRs:     cfg.AdminAllowedCIDRs,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CacheMaxAge:    cfg.CacheMaxAgeSeconds,
		CORS:           corsCfg,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) initReviewRepository(ctx context.Context, reviews []domain.Review, healthHandler *health.Handler) (repository.ReviewRepository, error) {
	if a.cfg.ReviewSource != config.StorePostgres {
		repo, err := memory.NewReviewRepository(reviews)
		if err != nil {
			return nil, fmt.Errorf("build review store: %w", err)
		}
		a.logger.Info("serving reviews from memory", slog.Int("reviews", repo.Len()))
		return repo, nil
	}

	pool, err := a.postgresPool(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	repo := postgres.NewReviewRepository(pool)
	inserted, err := repo.Import(ctx, reviews)
	if err != nil {
		return nil, fmt.Errorf("import seed reviews: %w", err)
	}
	a.logger.Info("seed reviews imported", slog.Int64("inserted", inserted))
	return repo, nil
}

func (a *App) initOrderRepository(ctx context.Context, healthHandler *health.Handler) (repository.OrderRepository, error) {
	if a.cfg.OrderStore != config.StorePostgres {
		a.logger.Info("orders kept in memory")
		return memory.NewOrderRepository(), nil
	}

	pool, err := a.postgresPool(ctx, healthHandler)
	if err != nil {
		return nil, err
	}
	a.logger.Info("storing orders in PostgreSQL")
	return postgres.NewOrderRepository(pool), nil
}

// postgresPool connects and migrates on first use. Later calls share the
// same pool.
func (a *App) postgresPool(ctx context.Context, healthHandler *health.Handler) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}

	pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
		Host:            a.cfg.PostgresHost,
		Port:            a.cfg.PostgresPort,
		User:            a.cfg.PostgresUser,
		Password:        a.cfg.PostgresPass,
		DBName:          a.cfg.PostgresDB,
		SSLMode:         a.cfg.PostgresSSL,
		MaxConns:        a.cfg.DBMaxConns,
		MinConns:        a.cfg.DBMinConns,
		MaxConnLifetime: time.Duration(a.cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(a.cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return pool, nil
}

func (a *App) initConfigurationRepository(ctx context.Context, healthHandler *health.Handler) (repository.ConfigurationRepository, error) {
	ttl := time.Duration(a.cfg.SessionTTLMinutes) * time.Minute

	if a.cfg.SessionStore != config.StoreRedis {
		a.logger.Info("configurator sessions kept in memory", slog.Duration("ttl", ttl))
		return memory.NewConfigurationRepository(ttl), nil
	}

	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     a.cfg.RedisHost,
		Port:     a.cfg.RedisPort,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("host", a.cfg.RedisHost),
		slog.Int("db", a.cfg.RedisDB),
		slog.Duration("ttl", ttl),
	)

	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	return redisrepo.NewConfigurationRepository(rdb, ttl), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server first, then
// the tracer, the Kafka producer and the stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush spans from drained requests.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.closeStores(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeStores() error {
	var err error
	if a.rdb != nil {
		if err = a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return err
}
