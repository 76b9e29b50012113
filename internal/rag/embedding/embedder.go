package embedding

import "context"

// Embedder maps text to fixed-length vectors. The same implementation
// (same model, same dimensionality) must serve both the ingestion and
// query paths; the two task-specific methods exist because providers
// accept a retrieval task hint, not because the models may differ.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error)
}
