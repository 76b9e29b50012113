package customHttpClient

import (
	"net/http"
	"time"
)

// Shared pooled transport for provider SDKs that accept an http.Client,
// so repeated embedding/LLM calls reuse connections.
var pooledTransport = &http.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 25,
	IdleConnTimeout:     60 * time.Second,
}

func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: pooledTransport,
		Timeout:   timeout,
	}
}
