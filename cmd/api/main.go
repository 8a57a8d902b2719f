package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"medigenius/internal/config"
	"medigenius/internal/db"
	apihttp "medigenius/internal/http"
	"medigenius/internal/llm"
	"medigenius/internal/repository"
	"medigenius/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.EnsureSchema {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("ensure schema", zap.Error(err))
		}
	}

	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	knowledgeRepo := repository.NewPgKnowledgeRepository(pool)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, logger)

	var (
		states  service.StateStore
		limiter service.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			states = service.NewRedisStateStore(redisClient, time.Duration(cfg.StateTTLMinutes)*time.Minute)
			limiter = service.NewRedisRateLimiter(redisClient, time.Minute, cfg.ChatRateLimit)
		}
		cancel()
	}
	if states == nil {
		states = service.NewMemoryStateStore()
	}
	if limiter == nil {
		limiter = service.NewMemoryRateLimiter(time.Minute, cfg.ChatRateLimit)
	}

	if n, err := knowledgeRepo.Count(ctx); err != nil {
		logger.Warn("count knowledge passages failed", zap.Error(err))
	} else {
		logger.Info("knowledge base loaded", zap.Int64("passages", n))
	}

	chatSvc := service.NewChatService(logger, llmClient, states, service.ChatServiceOptions{
		Embedder:    llmClient,
		Knowledge:   knowledgeRepo,
		TopK:        cfg.KnowledgeTopK,
		MaxDistance: cfg.KnowledgeMaxDistance,
	})
	messageSvc := service.NewMessageService(messageRepo)

	tokens, err := service.NewSessionTokens(cfg.AppSecret)
	if err != nil {
		logger.Fatal("session tokens", zap.Error(err))
	}
	if cfg.AppSecret == "" {
		logger.Warn("app secret not configured, sessions reset on restart")
	}

	chatHandler := apihttp.NewChatHandler(logger, tokens, chatSvc, messageSvc, sessionRepo, limiter)
	router := apihttp.NewRouter(logger, tokens, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
