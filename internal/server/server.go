// Package server exposes the generator over HTTP and forwards generated
// batches to external sinks on request.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"mock-data-forge/internal/common/config"
	httpclient "mock-data-forge/internal/common/http"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/metrics"
	"mock-data-forge/internal/common/observability"
	"mock-data-forge/internal/generator"
)

type Server struct {
	config     *config.Config
	generator  *generator.Generator
	obs        *observability.Observability
	httpClient *httpclient.Client
	openers    Openers
	logger     logger.Logger
	server     *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithOpeners replaces the sink connectors, typically in tests.
func WithOpeners(o Openers) Option {
	return func(s *Server) {
		s.openers = o
	}
}

// WithObservability records batch measurements through obs.
func WithObservability(obs *observability.Observability) Option {
	return func(s *Server) {
		s.obs = obs
	}
}

func New(cfg *config.Config, gen *generator.Generator, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		config:     cfg,
		generator:  gen,
		httpClient: httpclient.NewClient(config.GetDuration(cfg.Sinks.HTTP.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "server"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.openers = s.openers.withDefaults(cfg, log)
	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})
	return c.Handler(mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /{$}", s.route("home", s.handleHome))
	mux.Handle("GET /health", s.route("health", s.handleHealth))
	mux.Handle("GET /ready", s.route("ready", s.handleReady))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/generate", s.route("generate", s.handleGenerate))
	mux.Handle("POST /api/generate-and-send", s.route("generate-and-send", s.handleGenerateAndSend))
	mux.Handle("POST /api/generate-and-insert", s.route("generate-and-insert", s.handleGenerateAndInsert))

	sinkCfg := s.config.Sinks
	mux.Handle("POST /api/generate-and-push", s.route("generate-and-push",
		s.sinkHandler(pushEnvelope, s.openers.Redis, sinkCfg.Redis.Timeout)))
	mux.Handle("POST /api/generate-and-index", s.route("generate-and-index",
		s.sinkHandler(indexEnvelope, s.openers.Elasticsearch, sinkCfg.Elasticsearch.Timeout)))
	mux.Handle("POST /api/generate-and-publish", s.route("generate-and-publish",
		s.sinkHandler(publishEnvelope, s.openers.AMQP, sinkCfg.AMQP.Timeout)))
	mux.Handle("POST /api/generate-and-store", s.route("generate-and-store",
		s.sinkHandler(storeEnvelope, s.openers.Mongo, sinkCfg.Mongo.Timeout)))
	mux.Handle("POST /api/generate-and-notify", s.route("generate-and-notify",
		s.sinkHandler(notifyEnvelope, s.openers.SNS, sinkCfg.SNS.Timeout)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.config.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.config.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", map[string]interface{}{"port": s.config.Server.Port})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.config.Server.ShutdownTimeout))
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route counts requests by status and turns a panic into the generic 500
// generation error.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("panic while handling request", map[string]interface{}{
					"route": name,
					"panic": fmt.Sprint(p),
				})
				s.writeError(rec, fmt.Errorf("%v", p))
			}
			metrics.HTTPRequests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
			s.logger.Debug("request served", map[string]interface{}{
				"route":    name,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			})
		}()

		h(rec, r)
	})
}
