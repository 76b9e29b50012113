package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/pkg/logging"
	"github.com/avikal/ragchat/pkg/retry"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	retryAttempts = 3
	retryBase     = 2 * time.Second
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logging.Logger
}

func NewClient(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	logger := logging.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}

	logger.Info("Google Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)
	return &client{
		genAi:     c,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vectors, err := c.doCall(ctx, genai.Text(query), taskTypeQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("batch_embedding", time.Since(start)) }()

	content := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		content = append(content, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}

	vectors, err := c.doCall(ctx, content, taskTypeDocument)
	if err != nil {
		log.Error("Error getting batch embeddings from Google", "error", err, "chunks", len(chunks))
		return nil, err
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) ([][]float32, error) {
	var result *genai.EmbedContentResponse

	err := retry.Do(ctx, retryAttempts, retryBase, isTransient, func() error {
		var callErr error
		result, callErr = c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
			OutputDimensionality: &c.dimension,
			TaskType:             taskType,
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding response for model %s", c.model)
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

// Rate limits and transport outages get retried; auth and validation
// errors are permanent.
func isTransient(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
	}
	return false
}
