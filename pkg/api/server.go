// Package api exposes the risk engine over HTTP: position risk
// reports, rate curves, simulations, and stress testing.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/risk"
	"github.com/defirisk/wsteth-risk-engine/pkg/metrics"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

// Config holds the configuration for the API server
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server represents the API server
type Server struct {
	config          Config
	router          *mux.Router
	httpServer      *http.Server
	evaluator       *risk.Evaluator
	provider        provider.PoolDataProvider
	metricsRecorder *metrics.Recorder
	log             *logger.Logger
}

// NewServer creates a new API server
func NewServer(config Config, evaluator *risk.Evaluator, p provider.PoolDataProvider, metricsRecorder *metrics.Recorder) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 30 * time.Second
	}

	server := &Server{
		config:          config,
		router:          mux.NewRouter(),
		evaluator:       evaluator,
		provider:        p,
		metricsRecorder: metricsRecorder,
		log:             logger.GetLogger("api.server"),
	}

	server.setupRoutes()

	return server
}

// Start starts the API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.Infof("Starting API server on %s", addr)

	return s.httpServer.ListenAndServe()
}

// Stop stops the API server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info("Stopping API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.recoveryMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler())

	position := api.PathPrefix("/position").Subrouter()
	position.HandleFunc("/risk", s.handleGetPositionRisk).Methods("GET")
	position.HandleFunc("/depeg-sensitivity", s.handleGetDepegSensitivity).Methods("GET")

	ratesRouter := api.PathPrefix("/rates").Subrouter()
	ratesRouter.HandleFunc("/curve/{asset}", s.handleGetRateCurve).Methods("GET")

	simulations := api.PathPrefix("/simulations").Subrouter()
	simulations.HandleFunc("/montecarlo", s.handleRunMonteCarlo).Methods("POST")
	simulations.HandleFunc("/cascade", s.handleRunCascade).Methods("POST")

	stressRouter := api.PathPrefix("/stress").Subrouter()
	stressRouter.HandleFunc("/scenarios", s.handleGetScenarios).Methods("GET")
	stressRouter.HandleFunc("/apply", s.handleApplyScenario).Methods("POST")
	stressRouter.HandleFunc("/correlated", s.handleGenerateCorrelated).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrw := NewResponseWriter(w)

		next.ServeHTTP(wrw, r)

		s.log.Infof(
			"%s %s %s %d %s",
			r.RemoteAddr,
			r.Method,
			r.URL.Path,
			wrw.statusCode,
			time.Since(start),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrw := NewResponseWriter(w)

		next.ServeHTTP(wrw, r)

		if s.metricsRecorder != nil {
			s.metricsRecorder.RecordAPIRequest(r.Method, r.URL.Path, wrw.statusCode, time.Since(start))
		}
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Errorf("Panic in API handler: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ResponseWriter is a wrapper around http.ResponseWriter that captures status code
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// NewResponseWriter creates a new ResponseWriter
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and calls the underlying WriteHeader
func (w *ResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
