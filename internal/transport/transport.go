// Package transport issues outbound HTTP requests described by a Request and
// hands back the status code and raw body.
//
// A non-2xx answer is reported as a *StatusError that still carries the
// Response, so callers can keep the status code and payload as diagnostics.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBody caps how much of an upstream payload is kept.
const maxBody = 4 << 20

// Request describes one outbound call.
type Request struct {
	Method string      `json:"method,omitempty"` // defaults to GET
	URL    string      `json:"url"`
	Params url.Values  `json:"params,omitempty"`
	Body   any         `json:"body,omitempty"` // JSON-encoded when non-nil
	Header http.Header `json:"-"`
}

// Response is what came back over the wire.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Text returns the body as a trimmed string.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.Response.StatusCode)
}

// Doer sends a Request.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

type HTTP struct {
	Client *http.Client
}

func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Do(ctx context.Context, r Request) (*Response, error) {
	req, err := build(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Response: out}
	}
	return out, nil
}

func build(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := r.URL
	if len(r.Params) > 0 {
		u, err := url.Parse(r.URL)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		q := u.Query()
		for k, vs := range r.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	return req, nil
}
