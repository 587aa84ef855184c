package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/config"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.HAP.AppKey = "key"
	cfg.HAP.Sign = "sign"
	return cfg
}

func TestNew_BuiltInCatalog(t *testing.T) {
	a, err := New(t.Context(), testConfig(), common.NewSilentLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Tools) != 32 {
		t.Errorf("expected 32 tools, got %d", len(a.Tools))
	}
	if a.Metrics == nil {
		t.Error("expected metrics recorder when enabled")
	}
	if a.MCPHandler == nil || a.HealthHandler == nil || a.VersionHandler == nil || a.ToolsHandler == nil {
		t.Error("expected all handlers initialized")
	}
	if a.Client.BaseURL() != "https://api.mingdao.com" {
		t.Errorf("unexpected base URL %s", a.Client.BaseURL())
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	a, err := New(t.Context(), cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Metrics != nil {
		t.Error("expected no metrics recorder when disabled")
	}
}

func TestNew_MissingCredentialsStillStarts(t *testing.T) {
	cfg := config.NewDefaultConfig()

	a, err := New(t.Context(), cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("missing credentials must not fail startup: %v", err)
	}
	if len(a.Tools) != 32 {
		t.Errorf("expected 32 tools, got %d", len(a.Tools))
	}
}

const importDoc = `
openapi: 3.0.1
info: {title: extra, version: "1"}
paths:
  /v3/regions:
    get:
      operationId: getRegions
      summary: Regions (imported)
      parameters:
        - name: parentId
          in: query
          schema: {type: string}
  /v3/app/calendar:
    get:
      operationId: getCalendar
      summary: Get calendar
`

func TestNew_OpenAPIImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(path, []byte(importDoc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Catalog.OpenAPIFiles = []string{path}

	a, err := New(t.Context(), cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Tools) != 33 {
		t.Fatalf("expected 32 built-in plus 1 new tool, got %d", len(a.Tools))
	}

	var regionsTitle string
	var calendar bool
	for _, d := range a.Tools {
		switch d.Name {
		case "getRegions":
			regionsTitle = d.Title
		case "getCalendar":
			calendar = true
		}
	}
	if regionsTitle != "Regions (imported)" {
		t.Errorf("expected imported getRegions to replace the built-in, got title %q", regionsTitle)
	}
	if !calendar {
		t.Error("expected getCalendar to be added")
	}
}

func TestNew_OpenAPIImportMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.OpenAPIFiles = []string{filepath.Join(t.TempDir(), "missing.yaml")}

	if _, err := New(t.Context(), cfg, common.NewSilentLogger()); err == nil {
		t.Error("expected error for missing OpenAPI file")
	}
}
