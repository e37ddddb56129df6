// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/legacyforge/rpgbridge/internal/agent"
	"github.com/legacyforge/rpgbridge/internal/artifact"
	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/docstore"
	"github.com/legacyforge/rpgbridge/internal/llm"
	"github.com/legacyforge/rpgbridge/internal/tools"
)

type Server struct {
	router    chi.Router
	docs      *docstore.Store
	artifacts *artifact.Store
	provider  llm.Provider
	runner    *agent.Orchestrator
	runtime   *tools.Runtime
	cfg       Config
}

// Config controls request limits for the API surface.
type Config struct {
	MaxUploadBytes int64
	MaxChatRounds  int
}

func DefaultConfig() Config {
	return Config{
		MaxUploadBytes: 32 << 20,
		MaxChatRounds:  agent.DefaultMaxRounds,
	}
}

// Merge overlays positive overrides onto the base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.MaxUploadBytes > 0 {
		result.MaxUploadBytes = override.MaxUploadBytes
	}
	if override.MaxChatRounds > 0 {
		result.MaxChatRounds = override.MaxChatRounds
	}
	return result
}

func NewServer(docs *docstore.Store, artifacts *artifact.Store, provider llm.Provider, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if artifacts == nil {
		return nil, fmt.Errorf("artifact store required")
	}
	if provider == nil {
		provider = llm.NewProvider()
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	runtime := tools.NewRuntime(docs, artifacts)
	srv := &Server{
		router:    chi.NewRouter(),
		docs:      docs,
		artifacts: artifacts,
		provider:  provider,
		runner:    agent.New(provider, runtime),
		runtime:   runtime,
		cfg:       configuration,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", provider.Name())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleIndex)
	s.router.Post("/upload", s.handleUpload)
	s.router.Get("/documents", s.handleDocuments)
	s.router.Get("/artifacts", s.handleArtifacts)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Get("/v1/tools", s.handleTools)
	s.router.Post("/v1/analyze", s.handleAnalyze)
	s.router.Post("/v1/convert", s.handleConvert)
	s.router.Post("/v1/chat", s.handleChat)
	s.router.Post("/mcp", s.handleMCP)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.docs.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"documents": count,
		"provider":  s.provider.Name(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "rpgbridge",
		"endpoints": []string{
			"/healthz", "/upload", "/documents", "/artifacts",
			"/v1/logs", "/v1/tools", "/v1/analyze", "/v1/convert", "/v1/chat", "/mcp",
		},
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": tools.Catalog()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func trimLower(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
