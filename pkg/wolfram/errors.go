package wolfram

import "fmt"

// ErrorKind classifies upstream failures. Callers branch on the kind,
// never on message text.
type ErrorKind int

const (
	ErrTimeout ErrorKind = iota
	ErrUnauthorized
	ErrRateLimited
	ErrBadResponseShape
	ErrNetwork
	ErrServerError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrRateLimited:
		return "rate_limited"
	case ErrBadResponseShape:
		return "bad_response_shape"
	case ErrNetwork:
		return "network"
	case ErrServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// UpstreamError is the only error type Fetch returns.
type UpstreamError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wolfram alpha: %s", e.Message)
	}
	return fmt.Sprintf("wolfram alpha: %s", e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Hint returns a human-readable remediation suggestion for the failure
// class, suitable for showing to the end user.
func (e *UpstreamError) Hint() string {
	switch e.Kind {
	case ErrTimeout:
		return "The query timed out. Try a simpler question."
	case ErrUnauthorized:
		return "This may indicate an API key issue. Verify WOLFRAM_API_KEY is valid."
	case ErrRateLimited:
		return "The API rate limit was reached. Wait a moment and try again."
	case ErrBadResponseShape:
		return "The service returned an unexpected response. This may indicate an API key issue or service unavailability."
	case ErrNetwork:
		return "Could not reach the Wolfram Alpha API. Check your internet connection."
	case ErrServerError:
		return "There may be an issue with the Wolfram Alpha API service. Wait a moment and try again."
	default:
		return "Try again, or try a simpler query."
	}
}

func newError(kind ErrorKind, message string, err error) *UpstreamError {
	return &UpstreamError{Kind: kind, Message: message, Err: err}
}
