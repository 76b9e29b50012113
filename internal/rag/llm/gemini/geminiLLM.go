package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/llm"
	"github.com/avikal/ragchat/pkg/logging"
	"github.com/avikal/ragchat/pkg/retry"
)

const (
	retryAttempts = 2
	retryBase     = 2 * time.Second
)

type llmClient struct {
	client       *genai.Client
	modelName    string
	systemPrompt string
	temperature  float32
	logger       *logging.Logger
}

func NewClient(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	logger := logging.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.Info("Gemini client created", "model", cfg.Model)
	return &llmClient{
		client:       c,
		modelName:    cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		logger:       logger,
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, query string, matches []string, history []commonModels.Turn) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.systemPrompt}},
		},
		Temperature: genai.Ptr(c.temperature),
	}
	userPrompt := llm.BuildUserPrompt(query, matches, history)

	var result *genai.GenerateContentResponse
	err := retry.Do(ctx, retryAttempts, retryBase, isTransient, func() error {
		var callErr error
		result, callErr = c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), contentConfig)
		return callErr
	})
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}

	answer := result.Text()
	if answer == "" {
		log.Error("Gemini returned an empty completion")
		return "", llm.ErrEmptyAnswer
	}
	return answer, nil
}

func isTransient(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
	}
	return false
}
