package hap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/bobmcallan/hap-mcp/internal/common"
)

// Credential header names expected by the HAP API.
const (
	HeaderAppKey = "HAP-Appkey"
	HeaderSign   = "HAP-Sign"
)

// DefaultBaseURL is the public HAP API endpoint.
const DefaultBaseURL = "https://api.mingdao.com"

// maxResponseSize caps the response body to prevent OOM from unexpectedly large responses.
const maxResponseSize = 50 << 20 // 50MB

// Credentials are the two static values sent with every call.
type Credentials struct {
	AppKey string
	Sign   string
}

// Complete reports whether both credential values are set.
func (c Credentials) Complete() bool {
	return c.AppKey != "" && c.Sign != ""
}

// Observer is notified once per dispatched invocation.
type Observer interface {
	ObserveCall(tool string, outcome Outcome, duration time.Duration)
}

// Client dispatches tool invocations against one HAP API base URL.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *common.Logger
	debug      bool
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers an observer for every invocation.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithDebug enables request and response body logging.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// NewClient creates a client for the given base URL and credentials.
// The default HTTP client applies no timeout of its own.
func NewClient(baseURL string, creds Credentials, logger *common.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Dispatch performs one invocation of d with args and never fails: every
// error path is folded into the returned Envelope.
func (c *Client) Dispatch(ctx context.Context, d Descriptor, args map[string]any) (env Envelope) {
	start := time.Now()
	if c.observer != nil {
		defer func() {
			c.observer.ObserveCall(d.Name, env.Outcome, time.Since(start))
		}()
	}

	if !c.creds.Complete() {
		c.logger.Warn().Str("tool", d.Name).Msg("credentials missing, call not attempted")
		return MissingCredentials()
	}

	logger := c.logger.WithCorrelationId(uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("tool", d.Name).Str("panic", fmt.Sprint(r)).Msg("dispatch panicked")
			env = TransportError(fmt.Errorf("%v", r))
		}
	}()

	return c.do(ctx, logger, d, resolveArguments(d, args))
}

func (c *Client) do(ctx context.Context, logger *common.Logger, d Descriptor, args map[string]any) Envelope {
	fullURL, err := buildURL(c.baseURL, d, args)
	if err != nil {
		return TransportError(err)
	}

	body, err := buildBody(d, args)
	if err != nil {
		return TransportError(fmt.Errorf("failed to marshal request: %w", err))
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, string(d.Method), fullURL, bodyReader)
	if err != nil {
		return TransportError(err)
	}
	// Set directly to keep the header names byte-for-byte.
	req.Header["Content-Type"] = []string{"application/json"}
	req.Header[HeaderAppKey] = []string{c.creds.AppKey}
	req.Header[HeaderSign] = []string{c.creds.Sign}

	event := logger.Debug().Str("tool", d.Name).Str("method", string(d.Method)).Str("url", fullURL)
	if c.debug && body != nil {
		event = event.Str("body", string(body))
	}
	event.Msg("hap request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Error().Str("tool", d.Name).Str("url", fullURL).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("hap request failed")
		return TransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return TransportError(fmt.Errorf("failed to read response: %w", err))
	}

	event = logger.Debug().Str("tool", d.Name).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds())
	if c.debug {
		event = event.Str("response", string(raw))
	}
	event.Msg("hap response")

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return TransportError(fmt.Errorf("invalid JSON response (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RemoteError(remoteErrorMessage(raw), resp.StatusCode)
	}
	return Success(compact.Bytes())
}

// remoteErrorMessage extracts error_msg from an error body. Falsy values
// (absent, null, false, "", 0) yield "" so the caller falls back to
// UnknownRemoteError. Truthy non-string values are returned as their raw
// JSON text, so {"error_msg":42} reports "42" as a string.
func remoteErrorMessage(body []byte) string {
	msg := gjson.GetBytes(body, "error_msg")
	switch msg.Type {
	case gjson.String:
		return msg.Str
	case gjson.Number:
		if msg.Num == 0 {
			return ""
		}
		return msg.Raw
	case gjson.True, gjson.JSON:
		return msg.Raw
	default:
		return ""
	}
}
