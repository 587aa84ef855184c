package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tidwall/gjson"
)

// WireMockImage is the HAP API stand-in used by the integration suite.
const WireMockImage = "wiremock/wiremock:3.9.1"

// HAPContainer wraps a WireMock container that plays the HAP API.
type HAPContainer struct {
	container testcontainers.Container
	ctx       context.Context
	cancel    context.CancelFunc
	url       string
	external  bool
}

// StartHAP starts a WireMock container, or reuses the instance named by
// HAP_TEST_WIREMOCK_URL when set. Skips in short mode.
func StartHAP(t *testing.T) *HAPContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	if url := GetWireMockURL(); url != "" {
		h := &HAPContainer{url: url, external: true, ctx: context.Background()}
		h.Reset(t)
		return h
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	container, err := testcontainers.Run(ctx, WireMockImage,
		testcontainers.WithExposedPorts("8080/tcp"),
		testcontainers.WithCmd("--verbose"),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/__admin/health").WithPort("8080/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		t.Fatalf("failed to start wiremock: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "8080/tcp")
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	h := &HAPContainer{
		container: container,
		ctx:       ctx,
		cancel:    cancel,
		url:       fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
	}
	t.Logf("HAP stub ready: %s", h.url)
	return h
}

// URL returns the base URL to configure as the HAP API base.
func (h *HAPContainer) URL() string {
	return h.url
}

// Stub is a WireMock request mapping in its JSON admin form.
type Stub struct {
	Request  map[string]any `json:"request"`
	Response map[string]any `json:"response"`
}

// JSONStub matches method and exact path, returning body with status.
// Headers, when given, must match exactly.
func JSONStub(method, urlPath string, status int, body any, headers map[string]string) Stub {
	req := map[string]any{
		"method":  method,
		"urlPath": urlPath,
	}
	if len(headers) > 0 {
		matchers := make(map[string]any, len(headers))
		for k, v := range headers {
			matchers[k] = map[string]string{"equalTo": v}
		}
		req["headers"] = matchers
	}
	return Stub{
		Request: req,
		Response: map[string]any{
			"status":   status,
			"jsonBody": body,
			"headers":  map[string]string{"Content-Type": "application/json"},
		},
	}
}

// Register adds a mapping through the admin API.
func (h *HAPContainer) Register(t *testing.T, stub Stub) {
	t.Helper()
	data, err := json.Marshal(stub)
	if err != nil {
		t.Fatalf("failed to marshal stub: %v", err)
	}
	resp, err := http.Post(h.url+"/__admin/mappings", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to register stub: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register stub returned %d: %s", resp.StatusCode, body)
	}
}

// Reset drops all mappings and the request journal.
func (h *HAPContainer) Reset(t *testing.T) {
	t.Helper()
	req, err := http.NewRequestWithContext(h.ctx, http.MethodPost, h.url+"/__admin/reset", nil)
	if err != nil {
		t.Fatalf("failed to build reset request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to reset wiremock: %v", err)
	}
	resp.Body.Close()
}

// RecordedRequest is one entry of the WireMock request journal.
type RecordedRequest struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string
}

// Requests returns the journal, newest first.
func (h *HAPContainer) Requests(t *testing.T) []RecordedRequest {
	t.Helper()
	resp, err := http.Get(h.url + "/__admin/requests")
	if err != nil {
		t.Fatalf("failed to read request journal: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read request journal: %v", err)
	}

	var out []RecordedRequest
	gjson.GetBytes(data, "requests").ForEach(func(_, entry gjson.Result) bool {
		r := entry.Get("request")
		headers := map[string]string{}
		r.Get("headers").ForEach(func(k, v gjson.Result) bool {
			headers[k.String()] = v.String()
			return true
		})
		out = append(out, RecordedRequest{
			Method:  r.Get("method").String(),
			URL:     r.Get("url").String(),
			Body:    r.Get("body").String(),
			Headers: headers,
		})
		return true
	})
	return out
}

// CollectLogs saves the container output to dir.
func (h *HAPContainer) CollectLogs(dir string) {
	if h == nil || h.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := h.container.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()
	logs, err := io.ReadAll(reader)
	if err != nil {
		return
	}
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "wiremock.log"), logs, 0644)
}

// Cleanup terminates the container. External instances are left running.
// Uses a fresh context in case the start context expired.
func (h *HAPContainer) Cleanup() {
	if h == nil || h.external {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if h.container != nil {
		h.container.Terminate(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}
