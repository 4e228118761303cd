package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportProvider returns the output of the latest successful run, or nil.
type ReportProvider interface {
	Latest() *pipeline.Output
}

// Server exposes health, readiness, metrics and the latest run's results.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /report
// and /summary routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", handleReport(reports))
	mux.HandleFunc("GET /summary", handleSummary(reports))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleReport serves the rendered insight report as plain text.
func handleReport(reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := reports.Latest()
		if out == nil {
			http.Error(w, "no completed run yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Run-Id", out.RunID)
		w.WriteHeader(http.StatusOK)
		out.Report.RenderTo(w) //nolint:errcheck // client may hang up mid-write
	}
}

type summary struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Counts      pipeline.Counts  `json:"counts"`
	SkipReasons map[string]int   `json:"skip_reasons,omitempty"`
	Sections    []domain.Section `json:"sections"`
}

// handleSummary serves the latest run's counts and report sections as JSON.
func handleSummary(reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := reports.Latest()
		if out == nil {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no completed run yet"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, summary{
			RunID:       out.RunID,
			GeneratedAt: out.GeneratedAt,
			Counts:      out.Counts,
			SkipReasons: out.SkipReasons,
			Sections:    out.Report.Sections,
		})
	}
}
