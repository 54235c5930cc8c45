package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
)

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	// Body is JSON-encoded when non-nil.
	Body   any
	Header http.Header

	retried bool
}

// NewRequest creates a request with an empty header.
func NewRequest(method, path string, body any) *Request {
	return &Request{Method: method, Path: path, Body: body, Header: make(http.Header)}
}

// Retried reports whether this request is the resend that follows a token refresh.
func (r *Request) Retried() bool {
	return r.retried
}

func (r *Request) clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	return &c
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Token is the bearer token the request was sent with, "" when none.
	Token   string
	Request *Request
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if v == nil {
		return nil
	}
	if len(r.Body) == 0 {
		return domain.ErrServer.WithDetails("empty response body").WithStatus(r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return domain.ErrServer.WithDetails("decode response").WithStatus(r.StatusCode).WithCause(err)
	}
	return nil
}

// Doer sends a request. Implementations return an error only when no HTTP
// response was received; any status code is a successful Do.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware decorates a Doer.
type Middleware func(Doer) Doer

// Chain wraps d with middlewares; the first middleware is the outermost.
func Chain(d Doer, middlewares ...Middleware) Doer {
	for i := len(middlewares) - 1; i >= 0; i-- {
		d = middlewares[i](d)
	}
	return d
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(h http.Header) string {
	v := h.Get("Authorization")
	if len(v) > 7 && strings.EqualFold(v[:7], "Bearer ") {
		return v[7:]
	}
	return ""
}
