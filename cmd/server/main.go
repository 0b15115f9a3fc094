package main

import (
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/contractlens/contract-analyzer/internal/api"
	"github.com/contractlens/contract-analyzer/internal/config"
	"github.com/contractlens/contract-analyzer/internal/embeddings"
	"github.com/contractlens/contract-analyzer/internal/representation"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Without an API key the engine runs on lexical representations only
	var embedder representation.Embedder
	if cfg.OpenRouterKey != "" {
		client := embeddings.NewClient(cfg.OpenRouterKey,
			embeddings.WithModel(cfg.EmbeddingModel),
			embeddings.WithTimeout(time.Duration(cfg.EmbedTimeoutSec)*time.Second),
		)
		embedder = embeddings.NewCachedClient(client, embeddings.NewMemoryCache())
	} else {
		logger.Warn("no embedding API key configured, running with lexical similarity only")
	}

	server := api.NewServer(api.ServerConfig{
		DB:       db,
		Embedder: embedder,
		Config:   cfg,
		Logger:   logger,
	})

	logger.Info("starting contract-analyzer server", "port", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
