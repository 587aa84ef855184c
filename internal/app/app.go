package app

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/config"
	"github.com/bobmcallan/hap-mcp/internal/hap"
	"github.com/bobmcallan/hap-mcp/internal/handlers"
	"github.com/bobmcallan/hap-mcp/internal/mcp"
	"github.com/bobmcallan/hap-mcp/internal/metrics"
	"github.com/bobmcallan/hap-mcp/internal/openapi"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client    *hap.Client
	Metrics   *metrics.Recorder
	MCPServer *mcpserver.MCPServer
	Tools     []hap.Descriptor

	// HTTP handlers
	MCPHandler     *mcp.Handler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	ToolsHandler   *handlers.ToolsHandler
}

// Option customises App construction.
type Option func(*options)

type options struct {
	clientOpts []hap.Option
}

// WithClientOptions passes extra options to the HAP client.
func WithClientOptions(opts ...hap.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New initializes the application with all dependencies.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if !cfg.HasCredentials() {
		logger.Warn().Msg("HAP_APPKEY or HAP_SIGN not configured, every tool call will return an error")
	}

	descriptors, err := loadDescriptors(ctx, cfg.Catalog.OpenAPIFiles, logger)
	if err != nil {
		return nil, err
	}

	clientOpts := []hap.Option{hap.WithDebug(cfg.Debug)}
	var observer hap.Observer
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.NewRecorder()
		observer = a.Metrics
		clientOpts = append(clientOpts, hap.WithObserver(a.Metrics))
	}
	clientOpts = append(clientOpts, o.clientOpts...)

	a.Client = hap.NewClient(
		cfg.HAP.BaseURL,
		hap.Credentials{AppKey: cfg.HAP.AppKey, Sign: cfg.HAP.Sign},
		logger,
		clientOpts...,
	)

	a.MCPServer, a.Tools = mcp.NewServer(a.Client, descriptors, mcp.ServerOptions{
		Name:     cfg.Server.Name,
		Version:  config.GetVersion(),
		Observer: observer,
	}, logger)

	a.initHandlers()

	logger.Info().
		Int("tools", len(a.Tools)).
		Str("api_url", a.Client.BaseURL()).
		Bool("debug", cfg.Debug).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.MCPHandler = mcp.NewHandler(a.MCPServer, a.Tools, a.Config.Server.EndpointPath, a.Config.Server.AuthToken, a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, len(a.Tools), a.Config.HasCredentials())
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ToolsHandler = handlers.NewToolsHandler(a.Logger, a.MCPHandler.Tools)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// loadDescriptors returns the built-in catalog merged with every configured
// OpenAPI document. An imported operation replaces a built-in tool of the
// same name.
func loadDescriptors(ctx context.Context, files []string, logger *common.Logger) ([]hap.Descriptor, error) {
	descriptors := hap.Catalog()
	index := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		index[d.Name] = i
	}

	for _, file := range files {
		imported, err := openapi.LoadDescriptors(ctx, file, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to import tools: %w", err)
		}
		for _, d := range imported {
			if i, ok := index[d.Name]; ok {
				logger.Info().Str("name", d.Name).Str("file", file).Msg("OpenAPI operation replaces built-in tool")
				descriptors[i] = d
				continue
			}
			index[d.Name] = len(descriptors)
			descriptors = append(descriptors, d)
		}
		logger.Info().Str("file", file).Int("operations", len(imported)).Msg("imported OpenAPI document")
	}
	return descriptors, nil
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
