package backend

import (
	"encoding/json"
	"net/url"
	"time"
)

// Error codes produced by the gateway itself. Backend-originated codes
// (LOGIN_FAILED, ...) pass through unchanged.
const (
	CodeTimeout         = "TIMEOUT"
	CodeCancelled       = "CANCELLED"
	CodeNetworkError    = "NETWORK_ERROR"
	CodeEncodeError     = "ENCODE_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
)

// Error is the structured failure half of a gateway result. Every
// backend and transport failure is converted into one of these; no
// transport exception crosses the gateway boundary.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Result is the discriminated outcome of a gateway call: a success body
// or a structured error, never both.
type Result struct {
	Status int
	Body   json.RawMessage
	Err    *Error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Request describes one backend call. Timeout and Retries override the
// client defaults when set; Retries below zero means "use the default".
// Only idempotent requests are ever retried.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Body       interface{}
	Header     map[string]string
	Bearer     string
	Timeout    time.Duration
	Retries    int
	Idempotent bool
}

// envelope is the wire format every backend response uses:
// {status: "success", body} or {status: "error", error: {code, message, details}}.
type envelope struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
	Error  *Error          `json:"error"`
}
