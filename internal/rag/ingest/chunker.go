package ingest

import (
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/google/uuid"
)

// SplitText cuts text into fixed-size windows where each chunk's
// trailing overlap reappears as the next chunk's leading portion.
// Dropping the first overlap runes of every chunk after the first and
// concatenating reconstructs the input exactly. A text no longer than
// size yields exactly one chunk. overlap < size is enforced by config
// validation before this is ever called.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// PrepareChunks splits each extracted page and attaches provenance
// metadata (source document, page number, position on the page).
func PrepareChunks(pages []rawPage, doc commonModels.Document, embeddingModel string, size, overlap int) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	for _, page := range pages {
		if page.Content == "" {
			continue
		}
		for i, text := range SplitText(page.Content, size, overlap) {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        uuid.New().String(),
				Chunk:          text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
				EmbeddingModel: embeddingModel,
			})
		}
	}
	return allChunks
}
