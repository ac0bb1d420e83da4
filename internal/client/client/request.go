package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// RequestSpec describes one backend call. Path is relative to the base URL;
// a non-nil Body is sent as JSON.
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Doer performs authenticated requests. *HTTPClient implements it.
type Doer interface {
	Do(ctx context.Context, spec RequestSpec) (*Response, error)
}

// Request performs spec through c and decodes the JSON body into T.
// An empty 2xx body yields the zero T.
func Request[T any](ctx context.Context, c Doer, spec RequestSpec) (T, error) {
	var v T
	resp, err := c.Do(ctx, spec)
	if err != nil {
		return v, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s %s: %v", ErrInvalidResponse, spec.Method, spec.Path, err)
	}
	return v, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if raw, ok := body.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b, nil
}
