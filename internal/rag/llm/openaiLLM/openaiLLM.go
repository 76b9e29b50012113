package openaiLLM

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/customHttpClient"
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
	api          openai.Client
	modelName    string
	systemPrompt string
	temperature  float32
	logger       *logging.Logger
}

func NewClient(cfg config.LLMConfig) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai llm client requires an api key")
	}

	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(customHttpClient.New(120*time.Second)),
	)

	logger := logging.NewLogger("llm_openai")
	logger.Info("OpenAI LLM client created", "model", cfg.Model)
	return &llmClient{
		api:          api,
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

	userPrompt := llm.BuildUserPrompt(query, matches, history)

	var resp *openai.ChatCompletion
	err := retry.Do(ctx, retryAttempts, retryBase, isTransient, func() error {
		var callErr error
		resp, callErr = c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.modelName),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(c.systemPrompt),
				openai.UserMessage(userPrompt),
			},
			Temperature: openai.Float(float64(c.temperature)),
		})
		return callErr
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Error("OpenAI returned an empty completion")
		return "", llm.ErrEmptyAnswer
	}
	return resp.Choices[0].Message.Content, nil
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
