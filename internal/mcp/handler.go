package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/hap"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	Name     string
	Version  string
	Observer hap.Observer
}

// NewServer creates an MCP server with one tool per valid descriptor.
// It returns the server and the descriptors that were registered.
func NewServer(dispatcher Dispatcher, descriptors []hap.Descriptor, opts ServerOptions, logger *common.Logger) (*mcpserver.MCPServer, []hap.Descriptor) {
	if opts.Name == "" {
		opts.Name = "hap-mcp"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	mcpSrv := mcpserver.NewMCPServer(
		opts.Name,
		opts.Version,
		mcpserver.WithToolCapabilities(true),
	)
	registered := RegisterTools(mcpSrv, dispatcher, descriptors, opts.Observer, logger)

	logger.Info().
		Int("tools", len(registered)).
		Str("name", opts.Name).
		Str("version", opts.Version).
		Msg("MCP server initialized")

	return mcpSrv, registered
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	tools      []hap.Descriptor
	authToken  []byte
}

// NewHandler wraps mcpSrv for the streamable HTTP transport at endpointPath.
// When authToken is non-empty, every request must carry it as a bearer token.
func NewHandler(mcpSrv *mcpserver.MCPServer, tools []hap.Descriptor, endpointPath, authToken string, logger *common.Logger) *Handler {
	if endpointPath == "" {
		endpointPath = "/mcp"
	}
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
		mcpserver.WithEndpointPath(endpointPath),
	)
	return &Handler{
		streamable: streamable,
		logger:     logger,
		tools:      tools,
		authToken:  []byte(authToken),
	}
}

// Tools returns a copy of the registered descriptors.
func (h *Handler) Tools() []hap.Descriptor {
	result := make([]hap.Descriptor, len(h.tools))
	copy(result, h.tools)
	return result
}

// ServeHTTP checks the bearer token (when configured) and delegates to the
// mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(h.authToken) > 0 && !h.authorized(r) {
		h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("rejected MCP request without valid bearer token")

		host := sanitizeHost(r.Host)
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s"`, host))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Bearer token required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

func (h *Handler) authorized(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	token := []byte(strings.TrimPrefix(authHeader, "Bearer "))
	return subtle.ConstantTimeCompare(token, h.authToken) == 1
}

// sanitizeHost removes dangerous characters from the Host header to prevent
// header injection attacks. It strips CR, LF, and quote characters.
func sanitizeHost(host string) string {
	host = strings.ReplaceAll(host, "\r", "")
	host = strings.ReplaceAll(host, "\n", "")
	host = strings.ReplaceAll(host, `"`, "")
	return host
}
