package handlers

import (
	"net/http"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/hap"
)

// ToolSummary is one entry of GET /api/tools.
type ToolSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Params      []string `json:"params"`
}

// ToolsHandler lists the registered tools.
type ToolsHandler struct {
	logger *common.Logger
	tools  func() []hap.Descriptor
}

// NewToolsHandler creates a handler over the given descriptor source.
func NewToolsHandler(logger *common.Logger, tools func() []hap.Descriptor) *ToolsHandler {
	return &ToolsHandler{logger: logger, tools: tools}
}

// ServeHTTP handles GET /api/tools.
func (h *ToolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var descriptors []hap.Descriptor
	if h.tools != nil {
		descriptors = h.tools()
	}

	summaries := make([]ToolSummary, 0, len(descriptors))
	for _, d := range descriptors {
		params := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, p.Name)
		}
		summaries = append(summaries, ToolSummary{
			Name:        d.Name,
			Title:       d.Title,
			Description: d.Description,
			Method:      string(d.Method),
			Path:        d.Path,
			Params:      params,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(summaries),
		"tools": summaries,
	})
}
