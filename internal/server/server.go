package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/dhlexpress/internal/graphql"
	"github.com/tournevent/dhlexpress/internal/telemetry"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
)

// Server is the HTTP server for the DHL Express service.
type Server struct {
	port     int
	registry *shipper.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	resolver *graphql.Resolver
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance with its own metrics registry.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)
	resolver := graphql.NewResolver(registry, logger, metrics)

	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		gatherer: reg,
		resolver: resolver,
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// GraphQL endpoint
	mux.HandleFunc("/graphql", s.handleGraphQL)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port), zap.Strings("carriers", s.registry.Names()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeResponse(w, http.StatusMethodNotAllowed, errorResponse("Method not allowed, use POST"))
		return
	}

	var params gqlgen.RawParams
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		writeResponse(w, http.StatusBadRequest, errorResponse("Invalid JSON: "+err.Error()))
		return
	}
	if params.Query == "" {
		writeResponse(w, http.StatusBadRequest, errorResponse("Missing query"))
		return
	}

	resp := s.resolver.Execute(r.Context(), &params)

	status := http.StatusOK
	if resp.Data == nil {
		status = http.StatusUnprocessableEntity
	}
	writeResponse(w, status, resp)
}

func errorResponse(message string) *gqlgen.Response {
	return &gqlgen.Response{Errors: gqlerror.List{{Message: message}}}
}

func writeResponse(w http.ResponseWriter, status int, resp *gqlgen.Response) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
