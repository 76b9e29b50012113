package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avikal/ragchat/internal/chat"
	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/data/redisStore"
	"github.com/avikal/ragchat/internal/data/store"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/handlers"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/internal/rag/embedding/googleEmbedding"
	"github.com/avikal/ragchat/internal/rag/embedding/openaiEmbedding"
	"github.com/avikal/ragchat/internal/rag/llm"
	"github.com/avikal/ragchat/internal/rag/llm/gemini"
	"github.com/avikal/ragchat/internal/rag/llm/openaiLLM"
	"github.com/avikal/ragchat/internal/rag/vectorDB/qdrantDB"
	"github.com/avikal/ragchat/internal/server"
	"github.com/avikal/ragchat/pkg/logging"
)

var configPath string

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Provider == config.ProviderOpenAI {
		return openaiEmbedding.NewClient(cfg)
	}
	return googleEmbedding.NewClient(ctx, cfg)
}

func newProvider(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	if cfg.Provider == config.ProviderOpenAI {
		return openaiLLM.NewClient(cfg)
	}
	return gemini.NewClient(ctx, cfg)
}

func main() {

	_ = godotenv.Load()
	logging.Init()
	var logger = logging.NewLogger("main")

	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Configuration is invalid", "error", err)
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	// The vector collection and both model providers are checked once,
	// up front. A service that cannot answer is not worth starting.
	vectorDB, err := qdrantDB.NewClient(serviceContext, cfg.Qdrant, cfg.Embedding.Dimension)
	if err != nil {
		logger.Error("Qdrant is unreachable", "error", err, "host", cfg.Qdrant.Host)
		os.Exit(1)
	}
	if err := vectorDB.EnsureCollection(serviceContext, cfg.Qdrant.CollectionName); err != nil {
		logger.Error("Collection check failed", "error", err, "collection", cfg.Qdrant.CollectionName)
		os.Exit(1)
	}

	embeddingService, err := newEmbedder(serviceContext, cfg.Embedding)
	if err != nil {
		logger.Error("Embedding client failed to initialize", "error", err, "provider", cfg.Embedding.Provider)
		os.Exit(1)
	}

	llmProvider, err := newProvider(serviceContext, cfg.LLM)
	if err != nil {
		logger.Error("LLM client failed to initialize", "error", err, "provider", cfg.LLM.Provider)
		os.Exit(1)
	}

	// Session history degrades to in-memory when Redis is offline; a
	// stateless-but-answering service beats a dead one.
	var messageStore commonModels.MessageStore
	if rs, err := redisStore.NewStore(serviceContext, cfg.Redis); err != nil {
		logger.Error("Redis is offline, falling back to in-memory history", "error", err)
		messageStore = store.NewInMemoryMessageStore()
	} else {
		messageStore = store.NewRedisMessageStore(rs, cfg.Redis.HistoryTTL())
	}

	chatService := chat.NewService(vectorDB, embeddingService, llmProvider, messageStore, cfg.Retrieval)
	chatAPI := handlers.NewChatAPI(chatService, cfg.Server.RequestTimeout())

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	httpServer := server.New(cfg, chatAPI)
	shutdownParams := server.ShutdownParams{
		Server:           httpServer,
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
		ShutdownTimeout:  cfg.Server,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.Run(httpServer)

	<-stopExecution
	logger.Info("Server stopped")
}
