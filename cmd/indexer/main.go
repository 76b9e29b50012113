package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/internal/rag/embedding/googleEmbedding"
	"github.com/avikal/ragchat/internal/rag/embedding/openaiEmbedding"
	"github.com/avikal/ragchat/internal/rag/ingest"
	"github.com/avikal/ragchat/internal/rag/vectorDB/qdrantDB"
	"github.com/avikal/ragchat/pkg/logging"
)

var (
	configPath string
	docPath    string
	docName    string
)

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Provider == config.ProviderOpenAI {
		return openaiEmbedding.NewClient(cfg)
	}
	return googleEmbedding.NewClient(ctx, cfg)
}

func main() {

	_ = godotenv.Load()
	logging.Init()
	var logger = logging.NewLogger("indexer")

	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&docPath, "file", "", "path to the document to ingest")
	flag.StringVar(&docName, "name", "", "display name for the document (defaults to the file name)")
	flag.Parse()

	if docPath == "" {
		logger.Error("No document given, use -file")
		os.Exit(1)
	}
	if docName == "" {
		docName = filepath.Base(docPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Configuration is invalid", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vectorDB, err := qdrantDB.NewClient(ctx, cfg.Qdrant, cfg.Embedding.Dimension)
	if err != nil {
		logger.Error("Qdrant is unreachable", "error", err, "host", cfg.Qdrant.Host)
		os.Exit(1)
	}

	embeddingService, err := newEmbedder(ctx, cfg.Embedding)
	if err != nil {
		logger.Error("Embedding client failed to initialize", "error", err, "provider", cfg.Embedding.Provider)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(embeddingService, vectorDB, cfg.Ingest, cfg.Qdrant.CollectionName, cfg.Embedding.Model)
	chunks, err := pipeline.Run(ctx, docPath, docName)
	if err != nil {
		logger.Error("Ingestion failed", "error", err, "document", docName)
		os.Exit(1)
	}

	logger.Info("Document ingested", "document", docName, "chunks", chunks)
}
