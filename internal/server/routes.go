package server

import (
	"net/http"

	"github.com/bobmcallan/hap-mcp/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	cfg := s.app.Config

	// MCP endpoint (JSON-RPC over streamable HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle(cfg.Server.EndpointPath, s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/tools", s.app.ToolsHandler.ServeHTTP)

	// Prometheus metrics
	if s.app.Metrics != nil {
		mux.HandleFunc(cfg.Metrics.Path, readOnly(s.app.Metrics.Handler()))
	}

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", handlers.NotFound)

	return mux
}
