package ingest

import (
	"strings"
	"testing"

	"github.com/avikal/ragchat/internal/domain/commonModels"
)

// Concatenating chunks with each subsequent chunk's leading overlap
// removed must reconstruct the document exactly.
func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestSplitText_Lossless(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"Exact_Multiple", strings.Repeat("abcdefghij", 10), 20, 5},
		{"Ragged_Tail", strings.Repeat("x", 103), 25, 7},
		{"Zero_Overlap", strings.Repeat("word ", 30), 40, 0},
		{"Unicode", strings.Repeat("héllo wörld ", 25), 50, 10},
		{"Overlap_Nearly_Size", strings.Repeat("z", 90), 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.size, tt.overlap)
			if got := reassemble(chunks, tt.overlap); got != tt.text {
				t.Errorf("reassembly mismatch: got %d chars, want %d", len(got), len(tt.text))
			}
			for i, chunk := range chunks {
				if len([]rune(chunk)) > tt.size {
					t.Errorf("chunk %d exceeds size %d", i, tt.size)
				}
			}
		})
	}
}

func TestSplitText_OverlapIsSharedWithNeighbor(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	size, overlap := 30, 6

	chunks := SplitText(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-overlap:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the previous chunk's tail", i)
		}
	}
}

func TestSplitText_ShortDocumentIsOneChunk(t *testing.T) {
	text := "short document"
	chunks := SplitText(text, 1000, 50)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected a single identical chunk, got %v", chunks)
	}
}

func TestPrepareChunks_Metadata(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: "Page two content."},
		{Number: 3, Content: ""},
	}
	doc := commonModels.Document{Id: "doc-1", Name: "thebook.pdf"}

	chunks := PrepareChunks(pages, doc, "gemini-embedding-001", 1000, 50)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks (empty page skipped), got %d", len(chunks))
	}
	if chunks[0].Doc.Id != "doc-1" || chunks[0].PageNum != 1 {
		t.Errorf("metadata mismatch in chunk 0: %+v", chunks[0])
	}
	if chunks[1].PageNum != 2 || chunks[1].EmbeddingModel != "gemini-embedding-001" {
		t.Errorf("metadata mismatch in chunk 1: %+v", chunks[1])
	}
	if chunks[0].ChunkId == "" || chunks[0].ChunkId == chunks[1].ChunkId {
		t.Error("chunk ids must be unique and non-empty")
	}
}
