package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/hap-mcp/internal/common"
)

// Transports supported by the server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config represents the application configuration.
type Config struct {
	Debug   bool                 `toml:"debug"`
	HAP     HAPConfig            `toml:"hap"`
	Server  ServerConfig         `toml:"server"`
	Catalog CatalogConfig        `toml:"catalog"`
	Metrics MetricsConfig        `toml:"metrics"`
	Logging common.LoggingConfig `toml:"logging"`
}

// HAPConfig holds the HAP API endpoint and credentials.
type HAPConfig struct {
	AppKey  string `toml:"appkey"`
	Sign    string `toml:"sign"`
	BaseURL string `toml:"base_url"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name         string `toml:"name"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Transport    string `toml:"transport"`
	EndpointPath string `toml:"endpoint_path"`
	AuthToken    string `toml:"auth_token"`
}

// CatalogConfig lists OpenAPI documents whose operations are registered
// as additional tools.
type CatalogConfig struct {
	OpenAPIFiles []string `toml:"openapi_files"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are left untouched and a missing file
// is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies HAP_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("HAP_APPKEY"); key != "" {
		config.HAP.AppKey = key
	}
	if sign := os.Getenv("HAP_SIGN"); sign != "" {
		config.HAP.Sign = sign
	}
	if baseURL := os.Getenv("HAP_API_BASE_URL"); baseURL != "" {
		config.HAP.BaseURL = baseURL
	}
	if debug := os.Getenv("HAP_MCP_DEBUG"); debug != "" {
		if d, err := strconv.ParseBool(debug); err == nil {
			config.Debug = d
		}
	}
	if host := os.Getenv("HAP_MCP_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("HAP_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if transport := os.Getenv("HAP_MCP_TRANSPORT"); transport != "" {
		config.Server.Transport = strings.ToLower(transport)
	}
	if token := os.Getenv("HAP_MCP_AUTH_TOKEN"); token != "" {
		config.Server.AuthToken = token
	}
	if level := os.Getenv("HAP_MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if files := os.Getenv("HAP_MCP_OPENAPI_FILES"); files != "" {
		var paths []string
		for _, f := range strings.Split(files, ",") {
			if f = strings.TrimSpace(f); f != "" {
				paths = append(paths, f)
			}
		}
		config.Catalog.OpenAPIFiles = paths
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string, stdio bool) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if stdio {
		config.Server.Transport = TransportStdio
	}
}

// EffectiveLogLevel returns the configured level, forced to debug when
// Debug is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.Logging.Level
}

// HasCredentials reports whether both HAP credentials are configured.
func (c *Config) HasCredentials() bool {
	return c.HAP.AppKey != "" && c.HAP.Sign != ""
}

// Address returns host:port for the HTTP transport.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports mandatory configuration problems. Missing credentials
// are deliberately not reported: tools answer with an error envelope instead.
func (c *Config) Validate() []string {
	var issues []string

	if c.HAP.BaseURL == "" {
		issues = append(issues, "hap.base_url is required (HAP_API_BASE_URL)")
	} else if u, err := url.Parse(c.HAP.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("hap.base_url %q is not an absolute URL", c.HAP.BaseURL))
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
		if !strings.HasPrefix(c.Server.EndpointPath, "/") {
			issues = append(issues, fmt.Sprintf("server.endpoint_path %q must start with /", c.Server.EndpointPath))
		}
	default:
		issues = append(issues, fmt.Sprintf("server.transport %q must be %q or %q", c.Server.Transport, TransportStdio, TransportHTTP))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		issues = append(issues, fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
	}

	return issues
}
