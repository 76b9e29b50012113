package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/avikal/ragchat/internal/api"
	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/pkg/logging"
)

// Chain applies trace-id injection, per-IP rate limiting and request
// metrics around each handler.
type Chain struct {
	limiter *IPRateLimiter
	logger  *logging.Logger
}

func NewChain(cfg config.ServerConfig) *Chain {
	return &Chain{
		limiter: NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
		logger:  logging.NewLogger("middleware"),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		r = injectTrace(r)
		log := c.logger.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

		if !c.allow(r) {
			log.Warn("Rate limit exceeded", "ip", r.RemoteAddr)
			api.WriteError(rec, http.StatusTooManyRequests, "Rate limit exceeded")
		} else {
			next(rec, r)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func injectTrace(r *http.Request) *http.Request {
	trace := r.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = uuid.New().String()
	}
	ctx := context.WithValue(r.Context(), config.TRACE_ID_KEY, trace)
	r.Header.Set("X-Trace-Id", trace)
	return r.WithContext(ctx)
}

func (c *Chain) allow(r *http.Request) bool {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return c.limiter.GetLimiter(ip).Allow()
}
