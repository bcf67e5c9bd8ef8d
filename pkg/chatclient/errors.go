package chatclient

import "fmt"

// AuthenticationError means the server rejected the credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// NotFoundError means the referenced session or message does not exist or
// belongs to someone else.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Message)
}

// ValidationError means the request was malformed or violated a rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// UpstreamUnavailableError means a service behind the backend (retrieval,
// generation) is down. The call may be retried.
type UpstreamUnavailableError struct {
	Message string
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable: %s", e.Message)
}

// TimeoutError means the backend gave up waiting on a dependency.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out: %s", e.Message)
}

// TransportError covers every response the client could not map to a typed
// error: unexpected status codes, unparseable bodies.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unexpected response %d: %s", e.StatusCode, e.Body)
}

func errorFromBody(statusCode int, body *errorBody) error {
	switch body.ErrorType {
	case "AUTHENTICATION":
		return &AuthenticationError{Message: body.Message}
	case "NOT_FOUND":
		return &NotFoundError{Message: body.Message}
	case "VALIDATION":
		return &ValidationError{Message: body.Message}
	case "UPSTREAM_UNAVAILABLE":
		return &UpstreamUnavailableError{Message: body.Message}
	case "TIMEOUT":
		return &TimeoutError{Message: body.Message}
	}

	// Fall back on status code for responses without a typed body, e.g. the
	// auth middleware's plain 401s.
	switch statusCode {
	case 401:
		return &AuthenticationError{Message: body.Message}
	case 404:
		return &NotFoundError{Message: body.Message}
	case 400:
		return &ValidationError{Message: body.Message}
	case 503:
		return &UpstreamUnavailableError{Message: body.Message}
	case 504:
		return &TimeoutError{Message: body.Message}
	}
	return &TransportError{StatusCode: statusCode, Body: body.Message}
}
