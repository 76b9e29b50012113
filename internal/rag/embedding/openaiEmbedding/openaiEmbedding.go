package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/customHttpClient"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/pkg/logging"
	"github.com/avikal/ragchat/pkg/retry"
)

const (
	retryAttempts = 3
	retryBase     = 2 * time.Second
)

// client is the OpenAI alternative behind the Embedder interface.
// OpenAI embedding endpoints take no retrieval task hint, so query and
// document embedding share one call path.
type client struct {
	api       openai.Client
	model     string
	dimension int32
	logger    *logging.Logger
}

func NewClient(cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedding client requires an api key")
	}

	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(customHttpClient.New(60*time.Second)),
	)

	logger := logging.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)
	return &client{
		api:       api,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vectors, err := c.doCall(ctx, []string{query})
	if err != nil {
		c.logger.Error("Error getting query embedding from OpenAI", "error", err)
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("batch_embedding", time.Since(start)) }()

	vectors, err := c.doCall(ctx, chunks)
	if err != nil {
		c.logger.Error("Error getting batch embeddings from OpenAI", "error", err, "chunks", len(chunks))
		return nil, err
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	var resp *openai.CreateEmbeddingResponse

	err := retry.Do(ctx, retryAttempts, retryBase, isTransient, func() error {
		var callErr error
		resp, callErr = c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
			Model:      openai.EmbeddingModel(c.model),
			Dimensions: openai.Int(int64(c.dimension)),
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: sent %d texts", len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[int(item.Index)] = vec
	}
	return vectors, nil
}

func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable:
			return true
		}
	}
	return false
}
