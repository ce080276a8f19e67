package server

import (
	"context"
	"net/http"

	"github.com/MeKo-Tech/pogo/internal/config"
	"github.com/MeKo-Tech/pogo/internal/ocrapp"
)

// Server holds the HTTP server state and dependencies. It wraps a single
// ocrapp.App, the same detector/recognizer/pipeline wiring the CLI uses, so
// the server and CLI never drift on model resolution or engine setup.
type Server struct {
	app *ocrapp.App

	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int

	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int

	// AppConfig is passed straight through to ocrapp.Build, so the server
	// shares exactly the same model/engine wiring as the CLI.
	AppConfig *config.Config

	RateLimit RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64 // in bytes
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ModelInfo describes one model file known to the server.
type ModelInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
	Count  int         `json:"count"`
}

// OCRResponse wraps an error outcome. A successful OCR response is a
// resultfmt.PageJSON directly.
type OCRResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewServer builds the OCR app from cfg.AppConfig and wraps it in an HTTP
// server ready to have its routes registered. Callers must Close the
// server when done.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = &config.Config{}
	}

	app, err := ocrapp.Build(ctx, cfg.AppConfig)
	if err != nil {
		return nil, err
	}

	var limiter *RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.RequestsPerHour,
			cfg.RateLimit.MaxRequestsPerDay,
			cfg.RateLimit.MaxDataPerDay,
		)
	}

	maxUpload := cfg.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 10
	}
	timeout := cfg.TimeoutSec
	if timeout <= 0 {
		timeout = 30
	}

	return &Server{
		app:         app,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: maxUpload,
		timeoutSec:  timeout,
		rateLimiter: limiter,
	}, nil
}

// SetupRoutes configures the HTTP routes: health, model listing, metrics,
// single-image OCR, and a WebSocket streaming endpoint.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/api/models", s.corsMiddleware(s.modelsHandler))
	mux.Handle("/api/metrics", s.corsMiddleware(s.metricsHandler))
	mux.HandleFunc("/api/ocr", s.corsMiddleware(s.rateLimitMiddleware(s.ocrImageHandler)))
	mux.HandleFunc("/ws/ocr", s.corsMiddleware(s.ocrWebSocketHandler))
}

// Close releases server resources, including the underlying OCR app.
func (s *Server) Close() error {
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}
