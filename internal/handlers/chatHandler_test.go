package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avikal/ragchat/internal/api"
	"github.com/avikal/ragchat/internal/chat"
	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/data/store"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/rag/vectorDB"
)

// Mocked provider stack behind a real chat service, so handler tests
// exercise the full turn path with call-count assertions.
type countingEmbedder struct {
	calls     int32
	lastQuery string
}

func (m *countingEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	atomic.AddInt32(&m.calls, 1)
	m.lastQuery = query
	return []float32{0.5, 0.5}, nil
}

func (m *countingEmbedder) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	atomic.AddInt32(&m.calls, 1)
	return make([][]float32, len(chunks)), nil
}

type countingVectorDB struct {
	calls      int32
	lastVector []float32
}

func (m *countingVectorDB) EnsureCollection(ctx context.Context, name string) error { return nil }

func (m *countingVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	return nil
}

func (m *countingVectorDB) Search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	atomic.AddInt32(&m.calls, 1)
	m.lastVector = vector
	return []vectorDB.Match{{Content: "Paris is the capital of France.", DocName: "atlas.pdf", PageNum: 12}}, nil
}

type countingLLM struct {
	calls  int32
	answer string
	err    error
}

func (m *countingLLM) Generate(ctx context.Context, query string, matches []string, history []commonModels.Turn) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func newTestAPI(emb *countingEmbedder, vDB *countingVectorDB, l *countingLLM) *ChatAPI {
	service := chat.NewService(vDB, emb, l, store.NewInMemoryMessageStore(), config.RetrievalConfig{TopK: 3, HistoryDepth: 5})
	return NewChatAPI(service, 5*time.Second)
}

func postChat(t *testing.T, h *ChatAPI, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)
	return rec
}

func TestChatHandler_Success(t *testing.T) {
	emb := &countingEmbedder{}
	vDB := &countingVectorDB{}
	l := &countingLLM{answer: "The capital of France is Paris."}
	h := newTestAPI(emb, vDB, l)

	rec := postChat(t, h, `{"query": "What is the capital of France?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp api.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Answer != "The capital of France is Paris." {
		t.Errorf("answer got %q", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if emb.lastQuery != "What is the capital of France?" {
		t.Errorf("embedder got %q, want the literal query", emb.lastQuery)
	}
	if atomic.LoadInt32(&vDB.calls) != 1 {
		t.Errorf("retrieval calls got %d, want 1", vDB.calls)
	}
}

func TestChatHandler_EmptyQueryIs400AndNoProviderCalls(t *testing.T) {
	emb := &countingEmbedder{}
	vDB := &countingVectorDB{}
	l := &countingLLM{answer: "unused"}
	h := newTestAPI(emb, vDB, l)

	rec := postChat(t, h, `{"query": ""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got %d, want 400", rec.Code)
	}
	if atomic.LoadInt32(&emb.calls)+atomic.LoadInt32(&vDB.calls)+atomic.LoadInt32(&l.calls) != 0 {
		t.Error("empty query must not reach any provider")
	}
}

func TestChatHandler_MalformedBodyIs400(t *testing.T) {
	h := newTestAPI(&countingEmbedder{}, &countingVectorDB{}, &countingLLM{})

	rec := postChat(t, h, `{"query": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got %d, want 400", rec.Code)
	}
}

func TestChatHandler_EngineUnavailableIs503(t *testing.T) {
	h := NewChatAPI(nil, 5*time.Second)

	rec := postChat(t, h, `{"query": "hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status got %d, want 503", rec.Code)
	}
}

func TestChatHandler_LLMFailureIs500WithMessage(t *testing.T) {
	l := &countingLLM{err: errors.New("provider down")}
	h := newTestAPI(&countingEmbedder{}, &countingVectorDB{}, l)

	rec := postChat(t, h, `{"query": "hello"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status got %d, want 500", rec.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Message == "" {
		t.Error("error response must carry a non-empty message")
	}
}

func TestChatHandler_SessionIdIsEchoed(t *testing.T) {
	h := newTestAPI(&countingEmbedder{}, &countingVectorDB{}, &countingLLM{answer: "a"})

	rec := postChat(t, h, `{"query": "hello", "session_id": "sess-42"}`)

	var resp api.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.SessionID != "sess-42" {
		t.Errorf("session id got %q, want sess-42", resp.SessionID)
	}
}

func TestHealthHandler_AlwaysOk(t *testing.T) {
	for _, h := range []*ChatAPI{
		NewChatAPI(nil, time.Second), // engine absent
		newTestAPI(&countingEmbedder{}, &countingVectorDB{}, &countingLLM{answer: "a"}),
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.HealthHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status got %d, want 200", rec.Code)
		}
		var resp api.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad health body: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("status field got %q, want ok", resp.Status)
		}
	}
}
