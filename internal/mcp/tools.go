package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/hap"
)

// Dispatcher performs one tool invocation. *hap.Client satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, d hap.Descriptor, args map[string]any) hap.Envelope
}

// ValidateDescriptors filters descriptors, logging warnings for invalid or duplicate tools.
func ValidateDescriptors(descriptors []hap.Descriptor, logger *common.Logger) []hap.Descriptor {
	seen := make(map[string]bool, len(descriptors))
	valid := make([]hap.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping invalid tool descriptor")
			continue
		}
		if seen[d.Name] {
			logger.Warn().Str("name", d.Name).Msg("skipping duplicate tool descriptor")
			continue
		}
		seen[d.Name] = true
		valid = append(valid, d)
	}
	return valid
}

// RegisterTools validates descriptors and registers one MCP tool per valid entry.
// Returns the registered descriptors.
func RegisterTools(s *server.MCPServer, dispatcher Dispatcher, descriptors []hap.Descriptor, observer hap.Observer, logger *common.Logger) []hap.Descriptor {
	valid := ValidateDescriptors(descriptors, logger)
	for _, d := range valid {
		s.AddTool(BuildTool(d), ToolHandler(dispatcher, d, observer))
	}
	return valid
}

// ToolHandler routes an MCP tool call to the dispatcher. Arguments that fail
// validation are answered without a remote call. The handler never returns a
// Go error; failures are reported through IsError and the envelope text.
func ToolHandler(dispatcher Dispatcher, d hap.Descriptor, observer hap.Observer) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()
		if err := ValidateArguments(d, args); err != nil {
			if observer != nil {
				observer.ObserveCall(d.Name, hap.OutcomeInvalidArguments, 0)
			}
			return envelopeResult(hap.InvalidArguments(err)), nil
		}
		return envelopeResult(dispatcher.Dispatch(ctx, d, args)), nil
	}
}

// envelopeResult wraps an envelope as a single text content block.
func envelopeResult(env hap.Envelope) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(env.Text())},
		IsError: env.IsError(),
	}
}
