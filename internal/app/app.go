// Package app wires the service's components together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/emdili/docrag/internal/config"
	"github.com/emdili/docrag/internal/core/chunk"
	"github.com/emdili/docrag/internal/core/database"
	"github.com/emdili/docrag/internal/core/ingest"
	"github.com/emdili/docrag/internal/core/llm"
	"github.com/emdili/docrag/internal/core/objectstore"
	"github.com/emdili/docrag/internal/core/rag"
	"github.com/emdili/docrag/internal/core/ratelimit"
	"github.com/emdili/docrag/internal/core/registry"
	"github.com/emdili/docrag/internal/core/upload"
)

type App struct {
	DB       *sql.DB
	Registry *registry.Registry
	Pipeline *ingest.Pipeline
	Uploads  *upload.Service
	Composer *rag.Composer
	Server   *Server

	embedder *llm.GeminiEmbedder
	llm      *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := database.Open(appCtx, cfg, logger)
	if err != nil {
		return nil, err
	}
	userStore := database.NewUserStore(db)
	metadataStore := database.NewMetadataStore(db)
	vectorStore := database.NewVectorStore(db)

	objects, err := objectstore.NewS3Store(appCtx, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		_ = embedder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init llm: %w", err)
	}

	reg := registry.New(metadataStore)
	splitter := chunk.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := ingest.NewPipeline(reg, objects, embedder, vectorStore, splitter, logger)
	uploads := upload.NewService(reg, objects, vectorStore, pipeline, logger)
	composer := rag.NewComposer(embedder, vectorStore, llmProvider, cfg.RAGTopK, logger)

	limiter := ratelimit.NewLimiter(cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second)

	server := NewServer(cfg, userStore, uploads, composer, limiter, logger)

	return &App{
		DB:       db,
		Registry: reg,
		Pipeline: pipeline,
		Uploads:  uploads,
		Composer: composer,
		Server:   server,
		embedder: embedder,
		llm:      llmProvider,
	}, nil
}

func (a *App) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
