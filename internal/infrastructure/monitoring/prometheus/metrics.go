// Package prometheus exposes the engine's operational metrics.  All metrics
// live on a private registry so tests can build isolated instances.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

// Metrics holds every instrument the engine records.
type Metrics struct {
	registry *prometheus.Registry

	ClausesExtracted    *prometheus.CounterVec
	ExtractionDuration  prometheus.Histogram
	EmbeddingBatches    *prometheus.CounterVec
	ConflictsDetected   *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	QuestionsAnswered   *prometheus.CounterVec
	AnswerLatency       prometheus.Histogram
	EvidenceRetrieved   prometheus.Histogram
	VectorCacheRequests *prometheus.CounterVec
}

// NewMetrics registers all instruments on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ClausesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clauselens",
			Name:      "clauses_extracted_total",
			Help:      "Clauses extracted, labelled by clause type.",
		}, []string{"clause_type"}),

		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clauselens",
			Name:      "extraction_duration_seconds",
			Help:      "End-to-end contract extraction duration.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		EmbeddingBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clauselens",
			Name:      "embedding_batches_total",
			Help:      "Embedding batches, labelled by outcome.",
		}, []string{"outcome"}),

		ConflictsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clauselens",
			Name:      "conflicts_detected_total",
			Help:      "Conflicts recorded, labelled by conflict type and severity.",
		}, []string{"conflict_type", "severity"}),

		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clauselens",
			Name:      "analysis_duration_seconds",
			Help:      "Analysis pass duration, labelled by pass.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"pass"}),

		QuestionsAnswered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clauselens",
			Name:      "questions_answered_total",
			Help:      "Answered questions, labelled by review outcome.",
		}, []string{"requires_review"}),

		AnswerLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clauselens",
			Name:      "answer_latency_seconds",
			Help:      "Question answering latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),

		EvidenceRetrieved: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clauselens",
			Name:      "evidence_retrieved_count",
			Help:      "Evidence clauses returned per question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),

		VectorCacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clauselens",
			Name:      "vector_cache_requests_total",
			Help:      "Vector cache lookups, labelled by result.",
		}, []string{"result"}),
	}
}

// Handler returns the exposition handler for the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Server serves the metrics endpoint.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the metrics HTTP server from configuration.  Returns nil
// when metrics are disabled.
func NewServer(cfg config.MetricsConfig, m *Metrics, log logging.Logger) *Server {
	if !cfg.Enabled {
		return nil
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &Server{
		srv:    &http.Server{Addr: cfg.Addr, Handler: mux},
		logger: log.Named("metrics"),
	}
}

// Start serves until Shutdown.  It blocks, so callers run it in a goroutine.
func (s *Server) Start() error {
	s.logger.Info("metrics server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
