package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("QDRANT_PORT", "")
	t.Setenv("QDRANT_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")
}

func TestLoad_DefaultsWhenFileAbsent(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Embedding.Dimension != 768 {
		t.Errorf("default dimension got %d, want 768", cfg.Embedding.Dimension)
	}
	if cfg.Qdrant.CollectionName != "gemini-chatbot" {
		t.Errorf("default collection got %s", cfg.Qdrant.CollectionName)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 50 {
		t.Errorf("default chunking got size=%d overlap=%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Qdrant.Distance != DistanceCosine {
		t.Errorf("default distance got %s", cfg.Qdrant.Distance)
	}
}

func TestLoad_YamlOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ingest:
  chunk_size: 500
  chunk_overlap: 25
retrieval:
  top_k: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ingest.ChunkSize != 500 || cfg.Ingest.ChunkOverlap != 25 {
		t.Errorf("yaml chunking got size=%d overlap=%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("yaml top_k got %d", cfg.Retrieval.TopK)
	}
}

func TestLoad_MissingCredentialIsFatal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil {
		t.Fatal("expected error for missing credential")
	}
	if !strings.Contains(err.Error(), "credential") {
		t.Errorf("error should name the missing credential, got: %v", err)
	}
}

func TestValidate_OverlapMustBeSmallerThanChunk(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ingest:
  chunk_size: 100
  chunk_overlap: 100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestLoad_EnvOverridesAddresses(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("QDRANT_PORT", "7443")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Qdrant.Host != "qdrant.internal" || cfg.Qdrant.Port != 7443 {
		t.Errorf("qdrant env override got %s:%d", cfg.Qdrant.Host, cfg.Qdrant.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis env override got %s", cfg.Redis.Addr)
	}
}
