package commonModels

import (
	"context"
	"time"
)

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkPageOrder int    `json:"chunk_order"`
	EmbeddingModel string `json:"embedding_model"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// Turn is one completed question/answer exchange in a session. History
// is explicit state with an append/read contract rather than a hidden
// sequence inside a library object: a turn is appended only after a
// successful completion, and readers get the most recent turns in order.
type Turn struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

type MessageStore interface {
	AppendTurn(ctx context.Context, sessionId string, turn Turn) error
	History(ctx context.Context, sessionId string, limit int) ([]Turn, error)
}
