package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attica-health/carebot/internal/api/handlers"
	"github.com/attica-health/carebot/internal/config"
	"github.com/attica-health/carebot/internal/database"
	"github.com/attica-health/carebot/internal/jobs"
	"github.com/attica-health/carebot/internal/limiter"
	"github.com/attica-health/carebot/internal/openai"
	"github.com/attica-health/carebot/internal/repository"
	"github.com/attica-health/carebot/internal/server"
	"github.com/attica-health/carebot/internal/service"
	"github.com/attica-health/carebot/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the carebot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if !cfg.IsProduction() {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	projectRepo := repository.NewProjectRepository(pool)
	sourceRepo := repository.NewKnowledgeSourceRepository(pool)
	chunkRepo := repository.NewKnowledgeChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	provider := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		Timeout:        cfg.OpenAITimeout,
		Temperature:    cfg.OpenAITemperature,
	})
	if provider.Configured() {
		log.Printf("generation provider configured (model %s)", cfg.OpenAIModel)
	} else {
		log.Println("no generation provider configured, running knowledge-base-only")
	}

	retrievalSvc := service.NewRetrievalServiceWithMaxDistance(chunkRepo, cfg.KBVectorMaxDistance)
	assistantSvc := service.NewAssistantService(provider, retrievalSvc, cfg.IsProduction())
	knowledgeSvc := service.NewKnowledgeService(sourceRepo, txRunner)
	projectCache := service.NewProjectCache(projectRepo)

	var embeddingWorker *jobs.Worker
	if provider.Configured() {
		embeddingSvc := service.NewEmbeddingService(chunkRepo, provider)
		embeddingWorker = jobs.NewWorker("embedding-backfill", jobs.NewEmbeddingWorker(embeddingSvc), 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	var rateLimiter limiter.Limiter
	if cfg.HasRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		defer redisClient.Close()
		rateLimiter = limiter.NewRedisLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
		log.Println("using redis rate limiter")
	} else {
		rateLimiter = limiter.NewMemoryLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	}

	router := server.NewRouter(server.RouterConfig{
		ProjectResolver:  projectCache,
		RateLimiter:      rateLimiter,
		Production:       cfg.IsProduction(),
		ChatHandler:      handlers.NewChatHandler(assistantSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		ProjectHandler:   handlers.NewProjectHandler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}
