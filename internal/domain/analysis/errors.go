package analysis

import "fmt"

// ErrorKind classifies upstream provider failures for the HTTP layer.
type ErrorKind string

const (
	ErrRateLimited         ErrorKind = "rate_limited"         // provider 429, retryable after interval
	ErrUnauthorized        ErrorKind = "unauthorized"         // provider 401, credential invalid, fatal
	ErrBadRequest          ErrorKind = "bad_request"          // provider 400, usually prompt/size limits
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable" // provider 5xx, transient
	ErrUnknown             ErrorKind = "unknown"
)

// UpstreamError wraps a provider failure with its classification. No retries
// happen at the client layer; callers decide based on Kind.
type UpstreamError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("upstream %s", e.Kind)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
