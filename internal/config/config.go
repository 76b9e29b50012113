package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TRACE_ID_KEY = "traceId"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DistanceCosine = "cosine"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Redis     RedisConfig     `yaml:"redis"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

type ServerConfig struct {
	ListenAddr         string `yaml:"listen_addr"`
	ReadTimeoutSec     int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec"`
	IdleTimeoutSec     int    `yaml:"idle_timeout_sec"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec  int    `yaml:"request_timeout_sec"`
	RateLimitPerSecond int    `yaml:"rate_limit_per_second"`
	RateLimitBurst     int    `yaml:"rate_limit_burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// EmbeddingConfig picks the one embedding model used by both the
// ingestion and query paths. A mismatch between the two paths makes
// retrieval similarity meaningless, so there is exactly one of these.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // gemini or openai
	Model     string `yaml:"model"`
	Dimension int32  `yaml:"dimension"`
	APIKey    string `yaml:"-"` // GOOGLE_API_KEY / OPENAI_API_KEY
}

type LLMConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float32 `yaml:"temperature"`
	APIKey       string  `yaml:"-"`
}

type QdrantConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	UseTLS         bool   `yaml:"use_tls"`
	PoolSize       uint   `yaml:"pool_size"`
	APIKey         string `yaml:"-"` // QDRANT_API_KEY
	CollectionName string `yaml:"collection_name"`
	Distance       string `yaml:"distance"`
}

type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"-"` // REDIS_PASSWORD
	DB            int    `yaml:"db"`
	HistoryTTLHrs int    `yaml:"history_ttl_hours"`
}

type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	BatchSize    int `yaml:"batch_size"`
	EmbedWorkers int `yaml:"embed_workers"`
}

type RetrievalConfig struct {
	TopK         int `yaml:"top_k"`
	HistoryDepth int `yaml:"history_depth"`
}

// Load reads config.yaml from path (defaults are used when the file is
// absent), then applies environment overrides for secrets and addresses.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ":3000",
			ReadTimeoutSec:     5,
			WriteTimeoutSec:    60,
			IdleTimeoutSec:     120,
			ShutdownTimeoutSec: 10,
			RequestTimeoutSec:  30,
			RateLimitPerSecond: 2,
			RateLimitBurst:     5,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			AllowCredentials: true,
		},
		Embedding: EmbeddingConfig{
			Provider:  ProviderGemini,
			Model:     "gemini-embedding-001",
			Dimension: 768,
		},
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.5-flash",
			Temperature: 0.7,
			SystemPrompt: "You are a helpful assistant answering questions about the indexed document. " +
				"Answer only from the provided context. If the context does not contain the answer, say you don't know.",
		},
		Qdrant: QdrantConfig{
			Host:           "localhost",
			Port:           6334,
			PoolSize:       1,
			CollectionName: "gemini-chatbot",
			Distance:       DistanceCosine,
		},
		Redis: RedisConfig{
			Addr:          "127.0.0.1:6379",
			DB:            0,
			HistoryTTLHrs: 24,
		},
		Ingest: IngestConfig{
			ChunkSize:    1000,
			ChunkOverlap: 50,
			BatchSize:    100,
			EmbedWorkers: 4,
		},
		Retrieval: RetrievalConfig{
			TopK:         3,
			HistoryDepth: 5,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	switch cfg.Embedding.Provider {
	case ProviderOpenAI:
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.Embedding.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	if host := os.Getenv("QDRANT_HOST"); host != "" {
		cfg.Qdrant.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		cfg.Qdrant.Port = port
	}
	cfg.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
}

// Validate enforces the startup contract: missing credentials and a
// chunk overlap that is not smaller than the chunk size are fatal
// configuration errors, never retried.
func (c *Config) Validate() error {
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("missing embedding provider credential for %q (set GOOGLE_API_KEY or OPENAI_API_KEY)", c.Embedding.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("missing llm provider credential for %q (set GOOGLE_API_KEY or OPENAI_API_KEY)", c.LLM.Provider)
	}
	if c.Qdrant.Host == "" {
		return errors.New("qdrant host is required (set QDRANT_HOST)")
	}
	if c.Qdrant.CollectionName == "" {
		return errors.New("qdrant collection name is required")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}

func (c *ServerConfig) ReadTimeout() time.Duration  { return time.Duration(c.ReadTimeoutSec) * time.Second }
func (c *ServerConfig) WriteTimeout() time.Duration { return time.Duration(c.WriteTimeoutSec) * time.Second }
func (c *ServerConfig) IdleTimeout() time.Duration  { return time.Duration(c.IdleTimeoutSec) * time.Second }
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
func (c *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
func (c *RedisConfig) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLHrs) * time.Hour
}
