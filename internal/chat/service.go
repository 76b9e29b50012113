package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/internal/rag/llm"
	"github.com/avikal/ragchat/internal/rag/vectorDB"
	"github.com/avikal/ragchat/pkg/logging"
)

// Service is one conversational turn-taking contract: embed the query,
// retrieve relevant chunks, condition the model on them plus prior
// turns, answer.
type Service interface {
	Chat(ctx context.Context, sessionId, query string) (string, error)
}

type service struct {
	vectorDB     vectorDB.DataProcessor
	embedder     embedding.Embedder
	llmProvider  llm.Provider
	history      commonModels.MessageStore
	sessions     *sessionLocks
	topK         int
	historyDepth int
	logger       *logging.Logger
}

func NewService(db vectorDB.DataProcessor, e embedding.Embedder, provider llm.Provider, history commonModels.MessageStore, cfg config.RetrievalConfig) Service {
	return &service{
		vectorDB:     db,
		embedder:     e,
		llmProvider:  provider,
		history:      history,
		sessions:     newSessionLocks(),
		topK:         cfg.TopK,
		historyDepth: cfg.HistoryDepth,
		logger:       logging.NewLogger("Chat Service"),
	}
}

// Chat runs one turn. Turns within a session are serialized; history is
// appended only after a successful, non-empty completion, so a failed
// turn leaves the conversation exactly as it was.
func (s *service) Chat(ctx context.Context, sessionId, query string) (string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	start := time.Now()
	status := "error"
	defer func() { metrics.CaptureChatTurnMetrics(status, time.Since(start)) }()

	unlock := s.sessions.lock(sessionId)
	defer unlock()

	priorTurns, err := s.history.History(ctx, sessionId, s.historyDepth)
	if err != nil {
		log.Error("Failed to load history, continuing without it", "error", err)
		priorTurns = nil
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.vectorDB.Search(ctx, queryVector, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	contexts := make([]string, 0, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		contexts = append(contexts, m.Content)
		sources = append(sources, fmt.Sprintf("%s (page %d)", m.DocName, m.PageNum))
	}
	log.Debug("Retrieved context", "matches", len(matches))

	answer, err := s.llmProvider.Generate(ctx, query, contexts, priorTurns)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	turn := commonModels.Turn{Question: query, Answer: answer, Sources: sources}
	if err := s.history.AppendTurn(ctx, sessionId, turn); err != nil {
		// The caller still gets their answer; only continuity suffers.
		log.Error("Failed to persist turn", "error", err)
	}

	status = "ok"
	return answer, nil
}
