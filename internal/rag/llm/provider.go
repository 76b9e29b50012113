package llm

import (
	"context"
	"errors"

	"github.com/avikal/ragchat/internal/domain/commonModels"
)

// ErrEmptyAnswer is returned when the provider call succeeds but the
// completion is empty; callers treat it as an internal error rather
// than returning an empty success.
var ErrEmptyAnswer = errors.New("llm returned an empty answer")

type Provider interface {
	Generate(ctx context.Context, query string, matches []string, history []commonModels.Turn) (string, error)
}
