package hap

import (
	"bytes"
	"encoding/json"
)

// Fixed error messages and prefixes returned to callers.
const (
	MissingCredentialsMessage = "Error: HAP-Appkey or HAP-Sign missing in server config."
	TransportErrorPrefix      = "Error calling external API: "
	UnknownRemoteError        = "Unknown error"
)

// Outcome classifies how an invocation ended.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeRemoteError      Outcome = "remote_error"
	OutcomeTransportError   Outcome = "transport_error"
	OutcomeConfigError      Outcome = "config_error"
	OutcomeInvalidArguments Outcome = "invalid_arguments"
)

// ErrorPayload is the JSON object carried by an error envelope.
// StatusCode is only set for non-2xx remote responses.
type ErrorPayload struct {
	Error      string `json:"error"`
	StatusCode *int   `json:"statusCode,omitempty"`
}

// Envelope is the uniform result of one invocation: either the remote
// payload or an ErrorPayload, always rendered as a single JSON text.
type Envelope struct {
	Outcome Outcome
	Payload json.RawMessage
	Err     *ErrorPayload
}

// IsError reports whether the envelope carries an error.
func (e Envelope) IsError() bool {
	return e.Err != nil
}

// Text renders the envelope as the JSON text handed back to the caller.
func (e Envelope) Text() string {
	if e.Err == nil {
		return string(e.Payload)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e.Err); err != nil {
		return `{"error":"` + UnknownRemoteError + `"}`
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Success wraps a compact JSON payload.
func Success(payload json.RawMessage) Envelope {
	return Envelope{Outcome: OutcomeOK, Payload: payload}
}

// RemoteError wraps a non-2xx response.
func RemoteError(message string, statusCode int) Envelope {
	if message == "" {
		message = UnknownRemoteError
	}
	code := statusCode
	return Envelope{Outcome: OutcomeRemoteError, Err: &ErrorPayload{Error: message, StatusCode: &code}}
}

// TransportError wraps a failure raised while building, sending or decoding a call.
func TransportError(err error) Envelope {
	return Envelope{Outcome: OutcomeTransportError, Err: &ErrorPayload{Error: TransportErrorPrefix + err.Error()}}
}

// MissingCredentials is returned when HAP-Appkey or HAP-Sign is not configured.
func MissingCredentials() Envelope {
	return Envelope{Outcome: OutcomeConfigError, Err: &ErrorPayload{Error: MissingCredentialsMessage}}
}

// InvalidArguments is returned when arguments fail schema validation.
func InvalidArguments(err error) Envelope {
	return Envelope{Outcome: OutcomeInvalidArguments, Err: &ErrorPayload{Error: "Error: invalid arguments: " + err.Error()}}
}
