package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/bobmcallan/hap-mcp/internal/app"
	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/config"
	"github.com/bobmcallan/hap-mcp/internal/hap"
	"github.com/bobmcallan/hap-mcp/internal/server"
	testcommon "github.com/bobmcallan/hap-mcp/tests/common"
)

var credHeaders = map[string]string{
	hap.HeaderAppKey: "it-key",
	hap.HeaderSign:   "it-sign",
}

func startEnv(t *testing.T) (*testcommon.HAPContainer, *hap.Client) {
	t.Helper()
	stub := testcommon.StartHAP(t)
	t.Cleanup(func() {
		stub.CollectLogs(testcommon.GetResultsDir())
		stub.Cleanup()
	})
	client := hap.NewClient(stub.URL(), hap.Credentials{AppKey: "it-key", Sign: "it-sign"}, common.NewSilentLogger())
	return stub, client
}

func mustLookup(t *testing.T, name string) hap.Descriptor {
	t.Helper()
	d, ok := hap.Lookup(name)
	if !ok {
		t.Fatalf("tool %s not in catalog", name)
	}
	return d
}

func TestHAP_GetAppInfoSendsCredentials(t *testing.T) {
	stub, client := startEnv(t)
	stub.Register(t, testcommon.JSONStub("GET", "/v3/app", 200,
		map[string]any{"success": true, "data": map[string]any{"appId": "a1", "name": "CRM"}}, credHeaders))

	env := client.Dispatch(t.Context(), mustLookup(t, "getAppInfo"), map[string]any{"ai_description": "inspect"})
	if env.IsError() {
		t.Fatalf("unexpected error envelope: %s", env.Text())
	}
	if gjson.Get(env.Text(), "data.name").String() != "CRM" {
		t.Errorf("unexpected payload %s", env.Text())
	}
	if strings.Contains(env.Text(), "\n") {
		t.Error("payload must be compact")
	}
}

func TestHAP_RecordListBodyAndDefaults(t *testing.T) {
	stub, client := startEnv(t)
	stub.Register(t, testcommon.JSONStub("POST", "/v3/app/worksheets/ws1/rows/list", 200,
		map[string]any{"success": true, "data": map[string]any{"rows": []any{}}}, credHeaders))

	env := client.Dispatch(t.Context(), mustLookup(t, "getRecordList"), map[string]any{
		"worksheet_id":   "ws1",
		"search":         "acme",
		"ai_description": "find acme",
	})
	if env.IsError() {
		t.Fatalf("unexpected error envelope: %s", env.Text())
	}

	reqs := stub.Requests(t)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(reqs))
	}
	body := reqs[0].Body
	if gjson.Get(body, "pageSize").Int() != 50 || gjson.Get(body, "pageIndex").Int() != 1 {
		t.Errorf("expected default paging in body, got %s", body)
	}
	if gjson.Get(body, "search").String() != "acme" {
		t.Errorf("expected search in body, got %s", body)
	}
	if gjson.Get(body, "ai_description").Exists() {
		t.Errorf("annotation must not be forwarded, got %s", body)
	}
	if !strings.HasPrefix(reqs[0].Headers["Content-Type"], "application/json") {
		t.Errorf("unexpected content type %q", reqs[0].Headers["Content-Type"])
	}
}

func TestHAP_RemoteErrorCarriesStatus(t *testing.T) {
	stub, client := startEnv(t)
	stub.Register(t, testcommon.JSONStub("DELETE", "/v3/app/worksheets/ws1/rows/r9", 404,
		map[string]any{"success": false, "error_msg": "Record not found"}, nil))

	env := client.Dispatch(t.Context(), mustLookup(t, "deleteRecord"), map[string]any{
		"worksheet_id": "ws1",
		"row_id":       "r9",
	})
	if !env.IsError() {
		t.Fatalf("expected error envelope, got %s", env.Text())
	}
	if env.Text() != `{"error":"Record not found","statusCode":404}` {
		t.Errorf("unexpected envelope %s", env.Text())
	}
}

func TestHAP_WrongCredentialsMissStub(t *testing.T) {
	stub := testcommon.StartHAP(t)
	t.Cleanup(stub.Cleanup)
	stub.Register(t, testcommon.JSONStub("GET", "/v3/app", 200, map[string]any{"success": true}, credHeaders))

	client := hap.NewClient(stub.URL(), hap.Credentials{AppKey: "other", Sign: "other"}, common.NewSilentLogger())
	env := client.Dispatch(t.Context(), mustLookup(t, "getAppInfo"), nil)

	// Unmatched requests get a plain-text 404 from WireMock.
	if !env.IsError() {
		t.Fatalf("expected error envelope, got %s", env.Text())
	}
}

func TestHAP_EndToEndOverMCP(t *testing.T) {
	stub := testcommon.StartHAP(t)
	t.Cleanup(stub.Cleanup)
	stub.Register(t, testcommon.JSONStub("GET", "/v3/regions", 200,
		map[string]any{"success": true, "data": []any{map[string]any{"id": "cn", "name": "China"}}}, credHeaders))

	cfg := config.NewDefaultConfig()
	cfg.HAP.BaseURL = stub.URL()
	cfg.HAP.AppKey = "it-key"
	cfg.HAP.Sign = "it-sign"

	application, err := app.New(t.Context(), cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() { application.Close() })

	ts := httptest.NewServer(server.New(application).Handler())
	defer ts.Close()

	payload := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"getRegions","arguments":{"ai_description":"list regions"}}}`
	req, _ := http.NewRequestWithContext(t.Context(), http.MethodPost, ts.URL+cfg.Server.EndpointPath, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	text := gjson.GetBytes(raw, "result.content.0.text").String()
	if gjson.Get(text, "data.0.name").String() != "China" {
		t.Errorf("unexpected tool result %s", raw)
	}
	if gjson.GetBytes(raw, "result.isError").Bool() {
		t.Errorf("expected success result, got %s", raw)
	}
}
