package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearHAPEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HAP_APPKEY", "HAP_SIGN", "HAP_API_BASE_URL", "HAP_MCP_DEBUG", "HAP_MCP_HOST",
		"HAP_MCP_PORT", "HAP_MCP_TRANSPORT", "HAP_MCP_AUTH_TOKEN", "HAP_MCP_LOG_LEVEL",
		"HAP_MCP_OPENAPI_FILES",
	} {
		t.Setenv(key, "")
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.HAP.BaseURL != "https://api.mingdao.com" {
		t.Errorf("expected default base URL https://api.mingdao.com, got %s", cfg.HAP.BaseURL)
	}
	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port 4250, got %d", cfg.Server.Port)
	}
	if cfg.Server.Transport != TransportHTTP {
		t.Errorf("expected default transport http, got %s", cfg.Server.Transport)
	}
	if cfg.Server.EndpointPath != "/mcp" {
		t.Errorf("expected default endpoint /mcp, got %s", cfg.Server.EndpointPath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Debug {
		t.Error("expected debug off by default")
	}
	if cfg.HasCredentials() {
		t.Error("expected no credentials by default")
	}
}

func TestHasCredentials(t *testing.T) {
	tests := []struct {
		name   string
		appKey string
		sign   string
		want   bool
	}{
		{"both set", "key", "sign", true},
		{"whitespace counts as set", " ", "sign", true},
		{"empty appkey", "", "sign", false},
		{"empty sign", "key", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.HAP.AppKey = tt.appKey
			cfg.HAP.Sign = tt.sign
			if got := cfg.HasCredentials(); got != tt.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	clearHAPEnv(t)

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port 4250, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	clearHAPEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hap-mcp.toml")
	content := `
debug = true

[hap]
appkey = "file-key"
sign = "file-sign"
base_url = "https://hap.example.com"

[server]
port = 9000
transport = "stdio"

[catalog]
openapi_files = ["docs/extra.yaml"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug from file")
	}
	if cfg.HAP.AppKey != "file-key" || cfg.HAP.Sign != "file-sign" {
		t.Errorf("expected credentials from file, got %+v", cfg.HAP)
	}
	if cfg.HAP.BaseURL != "https://hap.example.com" {
		t.Errorf("expected base URL from file, got %s", cfg.HAP.BaseURL)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Transport != TransportStdio {
		t.Errorf("expected server settings from file, got %+v", cfg.Server)
	}
	if len(cfg.Catalog.OpenAPIFiles) != 1 || cfg.Catalog.OpenAPIFiles[0] != "docs/extra.yaml" {
		t.Errorf("expected openapi files from file, got %v", cfg.Catalog.OpenAPIFiles)
	}
	// untouched sections keep defaults
	if cfg.Server.EndpointPath != "/mcp" {
		t.Errorf("expected default endpoint path, got %s", cfg.Server.EndpointPath)
	}
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	clearHAPEnv(t)

	dir := t.TempDir()
	first := filepath.Join(dir, "a.toml")
	second := filepath.Join(dir, "b.toml")
	os.WriteFile(first, []byte("[server]\nport = 1111\nhost = \"0.0.0.0\"\n"), 0644)
	os.WriteFile(second, []byte("[server]\nport = 2222\n"), 0644)

	cfg, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 2222 {
		t.Errorf("expected port 2222 from second file, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host from first file, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_Errors(t *testing.T) {
	clearHAPEnv(t)

	if _, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(bad, []byte("[server\nport = "), 0644)
	_, err := LoadFromFiles(bad)
	if err == nil {
		t.Fatal("expected error for malformed TOML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearHAPEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hap-mcp.toml")
	os.WriteFile(path, []byte("[hap]\nappkey = \"file-key\"\n"), 0644)

	t.Setenv("HAP_APPKEY", "env-key")
	t.Setenv("HAP_SIGN", "env-sign")
	t.Setenv("HAP_API_BASE_URL", "http://localhost:8080")
	t.Setenv("HAP_MCP_DEBUG", "true")
	t.Setenv("HAP_MCP_PORT", "7777")
	t.Setenv("HAP_MCP_TRANSPORT", "STDIO")
	t.Setenv("HAP_MCP_AUTH_TOKEN", "secret")
	t.Setenv("HAP_MCP_LOG_LEVEL", "warn")
	t.Setenv("HAP_MCP_OPENAPI_FILES", "a.yaml, b.yaml,,")

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HAP.AppKey != "env-key" || cfg.HAP.Sign != "env-sign" {
		t.Errorf("expected env credentials, got %+v", cfg.HAP)
	}
	if cfg.HAP.BaseURL != "http://localhost:8080" {
		t.Errorf("expected env base URL, got %s", cfg.HAP.BaseURL)
	}
	if !cfg.Debug {
		t.Error("expected debug from env")
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Server.Transport != TransportStdio {
		t.Errorf("expected stdio transport, got %s", cfg.Server.Transport)
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("expected auth token from env, got %s", cfg.Server.AuthToken)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if strings.Join(cfg.Catalog.OpenAPIFiles, "|") != "a.yaml|b.yaml" {
		t.Errorf("expected [a.yaml b.yaml], got %v", cfg.Catalog.OpenAPIFiles)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	clearHAPEnv(t)
	t.Setenv("HAP_MCP_PORT", "not-a-port")
	t.Setenv("HAP_MCP_DEBUG", "maybe")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port to survive, got %d", cfg.Server.Port)
	}
	if cfg.Debug {
		t.Error("expected debug to stay false")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearHAPEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("HAP_APPKEY=dotenv-key\nHAP_SIGN=dotenv-sign\n"), 0644)

	// pre-set values are not overwritten by the file
	t.Setenv("HAP_SIGN", "shell-sign")
	// registered so t.Setenv restores the key after the test
	t.Setenv("HAP_APPKEY", "")
	os.Unsetenv("HAP_APPKEY")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HAP.AppKey != "dotenv-key" {
		t.Errorf("expected appkey from .env, got %q", cfg.HAP.AppKey)
	}
	if cfg.HAP.Sign != "shell-sign" {
		t.Errorf("expected shell value to win, got %q", cfg.HAP.Sign)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing env file should not error, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("empty path should not error, got %v", err)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 9999, "0.0.0.0", true)

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Transport != TransportStdio {
		t.Errorf("expected stdio transport, got %s", cfg.Server.Transport)
	}

	cfg = NewDefaultConfig()
	ApplyFlagOverrides(cfg, 0, "", false)
	if cfg.Server.Port != 4250 || cfg.Server.Host != "localhost" || cfg.Server.Transport != TransportHTTP {
		t.Errorf("zero flags should not override, got %+v", cfg.Server)
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.EffectiveLogLevel() != "info" {
		t.Errorf("expected info, got %s", cfg.EffectiveLogLevel())
	}
	cfg.Debug = true
	if cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("expected debug when Debug is set, got %s", cfg.EffectiveLogLevel())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"missing credentials is fine", func(c *Config) { c.HAP.AppKey = ""; c.HAP.Sign = "" }, ""},
		{"empty base url", func(c *Config) { c.HAP.BaseURL = "" }, "hap.base_url is required"},
		{"relative base url", func(c *Config) { c.HAP.BaseURL = "api.mingdao.com" }, "not an absolute URL"},
		{"bad transport", func(c *Config) { c.Server.Transport = "grpc" }, "server.transport"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"stdio ignores port", func(c *Config) { c.Server.Transport = TransportStdio; c.Server.Port = 0 }, ""},
		{"bad endpoint", func(c *Config) { c.Server.EndpointPath = "mcp" }, "endpoint_path"},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			issues := cfg.Validate()
			if tt.want == "" {
				if len(issues) != 0 {
					t.Errorf("expected no issues, got %v", issues)
				}
				return
			}
			if len(issues) == 0 || !strings.Contains(strings.Join(issues, "; "), tt.want) {
				t.Errorf("expected issue containing %q, got %v", tt.want, issues)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Address() != "localhost:4250" {
		t.Errorf("expected localhost:4250, got %s", cfg.Address())
	}
}
