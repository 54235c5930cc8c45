package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

const (
	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 30 * time.Second

	maxBodySize = 10 << 20
)

// TokenSource supplies the current access token. credstore.Store satisfies it.
type TokenSource interface {
	Get() (string, bool)
}

// HTTPClient sends requests to a single API base URL.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	jar       http.CookieJar
	tlsConfig *tls.Config
	tokens    TokenSource
	limiter   *rate.Limiter
	userAgent string
	logger    logger.Logger
	metrics   *metric.Registry
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenStore attaches the stored token as a bearer credential.
func WithTokenStore(ts TokenSource) Option {
	return func(c *HTTPClient) {
		c.tokens = ts
	}
}

// WithCookieJar sets the jar that carries the refresh cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *HTTPClient) {
		c.jar = jar
	}
}

// WithTLSConfig sets the TLS configuration, e.g. from tlsroots.ClientConfig.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		c.tlsConfig = cfg
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger.OrNop(l)
	}
}

// WithMetrics records request metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(c *HTTPClient) {
		c.metrics = r
	}
}

// NormalizeBaseURL adds http:// to a URL without a scheme and drops trailing slashes.
func NormalizeBaseURL(baseURL string) string {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// NewHTTPClient creates a client for baseURL. A URL without a scheme gets http://.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   NormalizeBaseURL(baseURL),
		timeout:   DefaultTimeout,
		userAgent: "sessionkit/" + buildinfo.Version,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.tlsConfig != nil {
		transport.TLSClientConfig = c.tlsConfig
	}
	c.client = &http.Client{
		Timeout:   c.timeout,
		Jar:       c.jar,
		Transport: transport,
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return "req-" + ulid.Make().String()
}

// Do sends req and reads the whole response. Any HTTP status is returned as a
// Response; errors are reserved for requests that got no response.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrNetwork.WithDetails("rate limiter").WithCause(err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails("encode request body").WithCause(err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("build request").WithCause(err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if body != nil && hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if hreq.Header.Get("Accept") == "" {
		hreq.Header.Set("Accept", "application/json")
	}
	hreq.Header.Set("User-Agent", c.userAgent)

	reqID := logger.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = NewRequestID()
	}
	hreq.Header.Set("X-Request-ID", reqID)

	token := bearerToken(hreq.Header)
	if token == "" && c.tokens != nil {
		if t, ok := c.tokens.Get(); ok {
			token = t
			hreq.Header.Set("Authorization", "Bearer "+t)
		}
	}

	log := c.logger.With("request_id", reqID, "method", method, "path", req.Path)
	start := time.Now()
	hresp, err := c.client.Do(hreq)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		log.Debug("request failed", "error", err, "retried", req.retried)
		return nil, classifyTransportError(err)
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(hresp.Body, maxBodySize))
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, hresp.StatusCode, elapsed)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	log.Debug("request completed",
		"status", hresp.StatusCode,
		"elapsed", elapsed,
		"authenticated", token != "",
		"retried", req.retried)

	return &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       data,
		Token:      token,
		Request:    req,
	}, nil
}

// classifyTransportError maps a failed round trip to ErrNetwork.
func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return domain.ErrNetwork.WithDetails("timeout").WithCause(err)
	case errors.Is(err, context.Canceled):
		return domain.ErrNetwork.WithDetails("canceled").WithCause(err)
	default:
		return domain.ErrNetwork.WithDetails(fmt.Sprintf("%v", unwrapURLError(err))).WithCause(err)
	}
}

// unwrapURLError drops the "Get \"url\":" prefix that net/http adds.
func unwrapURLError(err error) error {
	if ue, ok := err.(interface{ Unwrap() error }); ok {
		if inner := ue.Unwrap(); inner != nil {
			return inner
		}
	}
	return err
}
