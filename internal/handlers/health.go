package handlers

import (
	"net/http"

	"github.com/bobmcallan/hap-mcp/internal/common"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger         *common.Logger
	tools          int
	hasCredentials bool
}

// NewHealthHandler creates a new health handler. tools is the number of
// registered MCP tools and hasCredentials whether HAP credentials are set.
func NewHealthHandler(logger *common.Logger, tools int, hasCredentials bool) *HealthHandler {
	return &HealthHandler{logger: logger, tools: tools, hasCredentials: hasCredentials}
}

// ServeHTTP handles GET /api/health.
// Missing credentials degrade the status but the endpoint still answers 200:
// the server is up, tool calls return an error envelope.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := "ok"
	if !h.hasCredentials {
		status = "degraded"
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"tools":       h.tools,
		"credentials": h.hasCredentials,
	})
}
