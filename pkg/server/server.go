// Package server exposes the agent over HTTP. The /chat endpoint runs full
// turns through the orchestration loop; the remaining POST endpoints invoke a
// single tool directly through the same executor path, so direct calls and
// model-initiated calls share validation and error handling.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/baoman007/ai-weather-agent/pkg/agent"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

// Config wires the HTTP server to the agent core.
type Config struct {
	Addr           string
	Agent          *agent.Agent
	Registry       *tool.Registry
	Executor       *tool.Executor
	UploadDir      string
	MaxUploadBytes int64
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	server *http.Server
}

// New builds a Server with all routes registered.
func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	s := &Server{cfg: cfg}
	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the routed handler, exposed separately so tests can drive
// it without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /generate-image", s.handleGenerateImage)
	mux.HandleFunc("POST /text-to-speech", s.handleTextToSpeech)
	mux.HandleFunc("POST /analyze-image", s.handleAnalyzeImage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.cfg.UploadDir))))
	mux.Handle("GET /audio/", http.StripPrefix("/audio/",
		http.FileServer(http.Dir(filepath.Join(s.cfg.UploadDir, "audio")))))

	return mux
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
