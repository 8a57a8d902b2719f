package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"medigenius/internal/config"
	"medigenius/internal/db"
	"medigenius/internal/llm"
	"medigenius/internal/repository"
	"medigenius/internal/service"
)

func main() {
	dir := flag.String("dir", "./data", "directory with .txt or .md documents")
	chunk := flag.Int("chunk", 1000, "max characters per passage")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	knowledgeRepo := repository.NewPgKnowledgeRepository(pool)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, logger)
	ingester := service.NewKnowledgeIngester(logger, llmClient, knowledgeRepo, *chunk)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("read dir", zap.String("dir", *dir), zap.Error(err))
	}

	total := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".txt" && ext != ".md") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			logger.Warn("read document failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		n, err := ingester.Ingest(ctx, e.Name(), string(raw))
		total += n
		if err != nil {
			logger.Warn("ingest document failed", zap.String("file", e.Name()), zap.Error(err))
		}
	}

	count, err := knowledgeRepo.Count(ctx)
	if err != nil {
		logger.Warn("count passages failed", zap.Error(err))
	}
	logger.Info("ingest finished", zap.Int("stored", total), zap.Int64("passages_total", count))
}
