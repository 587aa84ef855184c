package config

import "github.com/bobmcallan/hap-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		HAP: HAPConfig{
			BaseURL: "https://api.mingdao.com",
		},
		Server: ServerConfig{
			Name:         "hap-mcp",
			Host:         "localhost",
			Port:         4250,
			Transport:    TransportHTTP,
			EndpointPath: "/mcp",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/hap-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
