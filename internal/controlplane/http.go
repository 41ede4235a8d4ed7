// Package controlplane runs the engine's optional ambient observability
// surface: a Prometheus /metrics and JSON /status endpoint over HTTP,
// protected by the donor's JWT auth and rate-limit middleware, plus a
// standard gRPC health service. None of it is on the critical path of
// §6's CLI contract — it starts alongside the kernel run and is torn down
// after detach.
package controlplane

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/controlplane/middleware"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/engineconfig"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/obslog"
)

// RunStatus is a snapshot of the current or most recently completed run,
// served at /status.
type RunStatus struct {
	Phase      string    `json:"phase"` // "attaching", "computing", "done", "failed"
	Metric     string    `json:"metric,omitempty"`
	Dimensions uint16    `json:"dimensions,omitempty"`
	Datapoints uint16    `json:"datapoints,omitempty"`
	Workers    int       `json:"workers,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	Error      string    `json:"error,omitempty"`
}

// StatusTracker is a concurrency-safe holder for the current RunStatus,
// updated by the engine's main loop and read by the /status handler.
type StatusTracker struct {
	mu     sync.RWMutex
	status RunStatus
}

// NewStatusTracker creates a tracker in the "attaching" phase.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: RunStatus{Phase: "attaching", StartedAt: time.Now()}}
}

// Set replaces the current status.
func (t *StatusTracker) Set(s RunStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
}

// Get returns the current status.
func (t *StatusTracker) Get() RunStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// HTTPServer serves /metrics and /status.
type HTTPServer struct {
	cfg         engineconfig.ControlPlaneConfig
	server      *http.Server
	tracker     *StatusTracker
	rateLimiter *middleware.RouteLimiter
}

// NewHTTPServer builds the control plane's HTTP server. It does not start
// listening until Start is called.
func NewHTTPServer(cfg engineconfig.ControlPlaneConfig, tracker *StatusTracker) *HTTPServer {
	mux := http.NewServeMux()
	s := &HTTPServer{cfg: cfg, tracker: tracker}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	handler := s.withMiddleware(mux)

	s.server = &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	return s
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.tracker.Get())
}

func (s *HTTPServer) withMiddleware(handler http.Handler) http.Handler {
	handler = accessLogMiddleware(obslog.NewAccessLogger(obslog.GetGlobalLogger()))(handler)

	s.rateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:   s.cfg.RateLimitEnabled,
		PerSecond: s.cfg.RateLimitPerSec,
		Burst:     s.cfg.RateLimitBurst,
	})
	handler = middleware.RateLimitMiddleware(s.rateLimiter)(handler)

	handler = middleware.AuthMiddleware(middleware.AuthConfig{
		Enabled:       s.cfg.AuthEnabled,
		JWTSecret:     s.cfg.JWTSecret,
		PublicPaths:   []string{"/metrics"},
		RequiredScope: "status:read",
	})(handler)

	return handler
}

// statusRecordingWriter captures the status code a handler wrote, since
// http.ResponseWriter itself never exposes it back to middleware.
type statusRecordingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusRecordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// accessLogMiddleware logs one AccessLogger entry per request against the
// control plane's two routes (/metrics, /status), and feeds the same
// method/status/duration into the request Prometheus series so /metrics
// reflects its own caller traffic. withMiddleware wraps it inside the
// rate-limit and auth middleware, so requests those reject are neither
// logged nor counted here.
func accessLogMiddleware(access *obslog.AccessLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusRecordingWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			duration := time.Since(start)
			status := fmt.Sprint(sw.status)
			access.LogAccess(r.Method, r.URL.Path, status, duration, nil)
			Metrics.RecordRequest(r.Method, status, duration)
		})
	}
}

// Start begins serving in a background goroutine. Bind errors after
// startup are logged, not returned, matching the donor's fire-and-forget
// server goroutine pattern.
func (s *HTTPServer) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.Errorf("control plane HTTP server error: %v", err)
		}
	}()
}

// Stop gracefully shuts the server down and releases the rate limiter's
// background eviction goroutine.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("controlplane: http shutdown: %w", err)
	}
	return nil
}
