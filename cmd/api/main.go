package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/educhat/backend/internal/api/handlers"
	cacheredis "github.com/educhat/backend/internal/cache/redis"
	"github.com/educhat/backend/internal/chat"
	docspg "github.com/educhat/backend/internal/docs/postgres"
	embopenai "github.com/educhat/backend/internal/embedding/openai"
	"github.com/educhat/backend/internal/llm"
	llmgemini "github.com/educhat/backend/internal/llm/gemini"
	llmopenai "github.com/educhat/backend/internal/llm/openai"
	"github.com/educhat/backend/internal/metrics"
	"github.com/educhat/backend/internal/middleware/ratelimit"
	"github.com/educhat/backend/internal/middleware/security"
	"github.com/educhat/backend/internal/middleware/validation"
	"github.com/educhat/backend/internal/storage/sqlite"
	"github.com/educhat/backend/pkg/circuitbreaker"
	"github.com/educhat/backend/pkg/config"
	appLogger "github.com/educhat/backend/pkg/logger"
	"github.com/educhat/backend/pkg/retry"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting chat API server")

	metrics.Init()

	db, err := docspg.Open(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to open postgres", zap.Error(err))
	}
	defer db.Close()

	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = appLogger.GetLogger()
	err = retry.Do(context.Background(), retryCfg, func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		appLogger.Fatal("Failed to reach postgres", zap.Error(err))
	}

	provider := docspg.NewProvider(db)

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	err = store.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var counterStore ratelimit.CounterStore
	if cfg.Redis.Enabled {
		redisClient, err := cacheredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		counterStore = redisClient
	}

	embeddingKey := cfg.LLM.EmbeddingAPIKey
	if embeddingKey == "" {
		embeddingKey = cfg.LLM.APIKey
	}
	embedder := embopenai.NewEmbedder(
		embeddingKey,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.EmbeddingDim,
		cfg.LLM.TimeoutSec,
	)

	generator, cleanup, err := newGenerator(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create generator", zap.Error(err))
	}
	if cleanup != nil {
		defer cleanup()
	}

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           appLogger.GetLogger(),
	})

	pipeline := chat.NewPipeline(
		provider,
		embedder,
		llm.WithBreaker(generator, cb),
		store,
		chat.NewFallbackPolicy(cfg.Retrieval.FallbackPhrases),
		cfg.Retrieval.TopK,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Store:                counterStore,
		Logger:               appLogger.GetLogger(),
	})

	chatHandler := handlers.NewChatHandler(pipeline, store)
	wsHandler := handlers.NewWebSocketHandler(pipeline)

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Chat API is running",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	api.Use(limiter.Middleware())

	api.Post("/chat", validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}), chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetChatHistory)
	api.Post("/chat/feedback", chatHandler.StoreFeedback)

	api.Get("/chat/ws", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(healthCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

func newGenerator(cfg config.LLMConfig) (llm.Generator, func() error, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := llmgemini.NewGenerator(
			context.Background(),
			cfg.APIKey,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.TimeoutSec,
		)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case "openai":
		g := llmopenai.NewGenerator(
			cfg.APIKey,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.TimeoutSec,
		)
		return g, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
