package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable matches every *NetworkError.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches an *HTTPError with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidResponse reports a 2xx response whose body is not what the
	// endpoint promises.
	ErrInvalidResponse = errors.New("invalid response")

	errRefreshFailed = errors.New("token refresh failed")
)

// NetworkError means no response was received: the transport failed, timed
// out, or the caller's context was cancelled.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// HTTPError is a terminal non-2xx response, body included.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http %d %s", e.Status, http.StatusText(e.Status))
	}
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, http.StatusText(e.Status), body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Message returns the human-readable message the backend put in the body:
// a plain JSON string, the first string of an array, or the "message" field
// of an object (itself any of these forms). It returns "" when there is none.
func (e *HTTPError) Message() string {
	var payload any
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	return messageOf(payload)
}

func messageOf(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s
			}
		}
	case map[string]any:
		return messageOf(v["message"])
	}
	return ""
}
