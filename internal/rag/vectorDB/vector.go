package vectorDB

import (
	"context"

	"github.com/avikal/ragchat/internal/domain/commonModels"
)

// Match is one retrieved record: the stored chunk text plus the
// provenance metadata it was ingested with.
type Match struct {
	Content  string
	DocName  string
	PageNum  int64
	Score    float32
	ChunkId  string
	SourceId string
}

type DataProcessor interface {
	// EnsureCollection creates the named collection if absent and
	// verifies dimensionality and distance metric when it already
	// exists. A configuration mismatch is a fatal error.
	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
