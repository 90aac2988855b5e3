// Package server exposes the monitor's health, status and metrics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/titulos-monitor/titulos-monitor/internal/logger"
	"github.com/titulos-monitor/titulos-monitor/internal/monitor"
)

// StatusSource provides the current monitor state
type StatusSource interface {
	Snapshot() monitor.Tracker
}

// Server is the ops HTTP endpoint
type Server struct {
	httpServer *http.Server
}

// New builds the server. gatherer backs /metrics.
func New(addr string, source StatusSource, gatherer prometheus.Gatherer) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           Router(source, gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Router wires the ops routes
func Router(source StatusSource, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok")) // nolint:errcheck
	})
	r.Get("/status", statusHandler(source))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type statusResponse struct {
	State             string `json:"state"`
	ConsecutiveErrors int    `json:"consecutive_errors"`
	Attempts          int    `json:"attempts"`
	LastCheck         string `json:"last_check,omitempty"`
	LastError         string `json:"last_error,omitempty"`
}

func statusHandler(source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := source.Snapshot()
		resp := statusResponse{
			State:             snap.State.String(),
			ConsecutiveErrors: snap.ConsecutiveErrors,
			Attempts:          snap.Attempts,
			LastError:         snap.LastError,
		}
		if !snap.LastCheck.IsZero() {
			resp.LastCheck = snap.LastCheck.UTC().Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn("Writing status response failed", logger.Fields{"error": err.Error()})
		}
	}
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	logger.Info("Status endpoint listening", logger.Fields{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
