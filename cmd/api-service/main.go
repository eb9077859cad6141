package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/handler"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/router"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/storage"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/assets"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/config"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/ratelimit"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/web"
	"github.com/Mo-Ibra/next-fullstack-jobs/shared/logger"
	"github.com/Mo-Ibra/next-fullstack-jobs/shared/postgresql"
	"github.com/Mo-Ibra/next-fullstack-jobs/shared/rabbitmq"
)

const (
	serviceName      = "job-board-api"
	dbStatsInterval  = time.Minute
	migrationTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
	)

	checks := map[string]handler.Check{}

	var dbClient *postgresql.Client
	if cfg.UsesPostgres() {
		dbClient, err = initPostgreSQL(&cfg.Database, appLogger.Component("postgres").Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()

		checks["postgres"] = dbClient.HealthCheck
		appLogger.Info("Database connection established")

		if cfg.Database.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
			err := storage.Migrate(ctx, dbClient.GetDB())
			cancel()
			if err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			appLogger.Info("Database schema is up to date")
		}
	}

	publicStore, adminStore, err := initJobStores(cfg, dbClient)
	if err != nil {
		return fmt.Errorf("failed to initialize job store: %w", err)
	}

	sessions, redisClient, err := initSessionStore(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		appLogger.Info("Redis session store connected", slog.String("addr", cfg.Redis.Addr))
	} else {
		appLogger.Warn("Redis not configured, sessions are kept in memory and lost on restart")
	}

	authn, err := auth.NewAuthenticator(auth.Config{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		SessionTTL:        cfg.Auth.SessionTTL,
	}, sessions, appLogger.Component("auth").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	logoStore, err := initLogoStore(&cfg.Uploads, dbClient)
	if err != nil {
		return fmt.Errorf("failed to initialize logo store: %w", err)
	}

	// RabbitMQ is optional for the API; without it events are dropped
	var publisher events.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Component("rabbitmq").Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		publisher = rabbitClient
		appLogger.Info("RabbitMQ connection established")
	}

	templates, err := web.Templates()
	if err != nil {
		return err
	}

	session := handler.SessionConfig{
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.SecureCookie,
		TTL:        cfg.Auth.SessionTTL,
	}

	deps := &handler.Dependencies{
		Logger:      appLogger.Logger,
		PublicStore: publicStore,
		AdminStore:  adminStore,
		Auth:        authn,
		Session:     session,
		Uploader:    assets.NewUploader(logoStore, cfg.Uploads.MaxBytes, cfg.Uploads.PublicBaseURL),
		Blog:        blog.NewReader(cfg.Blog.ContentDir, appLogger.Component("blog").Logger),
		Events:      events.NewEmitter(publisher, appLogger.Component("events").Logger),
		Checks:      checks,
		ServiceName: serviceName,
	}

	r := initRouter(cfg, deps, templates)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopStats := make(chan struct{})
	if dbClient != nil {
		go logDBStats(dbClient, stopStats)
	}

	appLogger.Info("API service is running", slog.String("address", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		close(stopStats)
		return fmt.Errorf("server failed: %w", err)
	}

	appLogger.Info("Shutting down server...")
	close(stopStats)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initJobStores builds the restricted handle for public routes and the elevated one for admin routes.
// With Postgres both are the same pool; with Supabase they carry different keys.
func initJobStores(cfg *config.Config, dbClient *postgresql.Client) (handler.JobStore, handler.JobStore, error) {
	if cfg.Store.Driver == config.StoreDriverSupabase {
		public, err := storage.NewSupabaseStore(cfg.Store.SupabaseURL, cfg.Store.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		admin, err := storage.NewSupabaseStore(cfg.Store.SupabaseURL, cfg.Store.SupabaseServiceKey)
		if err != nil {
			return nil, nil, err
		}
		return public, admin, nil
	}

	store := storage.NewPostgresStore(dbClient.GetDB())
	return store, store, nil
}

// initSessionStore connects to Redis when an address is configured and falls back to memory otherwise
func initSessionStore(cfg *config.RedisConfig) (auth.SessionStore, *redis.Client, error) {
	if cfg.Addr == "" {
		return auth.NewMemoryStore(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return auth.NewRedisStore(client), client, nil
}

// initLogoStore picks where uploaded logos live
func initLogoStore(cfg *config.UploadsConfig, dbClient *postgresql.Client) (assets.Store, error) {
	if cfg.Backend == "filesystem" {
		return assets.NewFileStore(cfg.Dir)
	}
	return assets.NewPostgresStore(dbClient.GetDB()), nil
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		BindingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies, templates *template.Template) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, router.Options{
		CORSOrigins: cfg.CORS.AllowOrigins,
		Limiter:     ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
		Templates:   templates,
	})
}

func logDBStats(dbClient *postgresql.Client, stop <-chan struct{}) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			dbClient.LogStats()
		case <-stop:
			return
		}
	}
}
