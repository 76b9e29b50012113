package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var chatTurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "chat_turn_duration_seconds",
	Help:    "Total time spent handling one chat turn.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Number of chunks embedded and upserted by the indexer.",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureChatTurnMetrics(status string, timeElapsed time.Duration) {
	chatTurnDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}

func AddIngestedChunks(n int) {
	chunksIngested.Add(float64(n))
}
