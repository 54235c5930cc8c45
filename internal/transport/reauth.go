package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

// DefaultRefreshTimeout bounds a single refresh call.
const DefaultRefreshTimeout = 15 * time.Second

// Refresher obtains a new access token using the refresh cookie.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) (string, error)

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context) (string, error) {
	return f(ctx)
}

// TokenStore is the credential store the middleware reads and updates.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// ExpiredHandler is called once per failed refresh, after the store is cleared.
type ExpiredHandler func(ctx context.Context, err error)

// Reauth retries a request once after a 401 with a freshly refreshed token.
type Reauth struct {
	refresher Refresher
	store     TokenStore
	shared    bool
	timeout   time.Duration
	logger    logger.Logger
	metrics   *metric.Registry

	group singleflight.Group

	mu sync.Mutex
	// expired is set after a refresh fails and cleared by a later success or Reset.
	expired      bool
	expiredToken string
	handlers     []ExpiredHandler
}

// ReauthOption configures Reauth.
type ReauthOption func(*Reauth)

// WithSharedRefresh controls whether concurrent 401s share one refresh call.
// Enabled by default.
func WithSharedRefresh(shared bool) ReauthOption {
	return func(r *Reauth) {
		r.shared = shared
	}
}

// WithRefreshTimeout bounds each refresh call.
func WithRefreshTimeout(d time.Duration) ReauthOption {
	return func(r *Reauth) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithReauthLogger sets the logger.
func WithReauthLogger(l logger.Logger) ReauthOption {
	return func(r *Reauth) {
		r.logger = logger.OrNop(l)
	}
}

// WithReauthMetrics records refresh and retry counters into m.
func WithReauthMetrics(m *metric.Registry) ReauthOption {
	return func(r *Reauth) {
		r.metrics = m
	}
}

// NewReauth creates the refresh-and-retry middleware.
func NewReauth(refresher Refresher, store TokenStore, opts ...ReauthOption) *Reauth {
	r := &Reauth{
		refresher: refresher,
		store:     store,
		shared:    true,
		timeout:   DefaultRefreshTimeout,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnExpired registers h to run when a refresh fails.
func (r *Reauth) OnExpired(h ExpiredHandler) {
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()
}

// Reset forgets the token whose refresh failed. Call it after a new login.
func (r *Reauth) Reset() {
	r.mu.Lock()
	r.expired, r.expiredToken = false, ""
	r.mu.Unlock()
}

// Middleware returns r.Wrap as a Middleware.
func (r *Reauth) Middleware() Middleware {
	return r.Wrap
}

// Wrap decorates next with the refresh-and-retry behaviour.
func (r *Reauth) Wrap(next Doer) Doer {
	return DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next.Do(ctx, req)
		if err != nil || resp.StatusCode != http.StatusUnauthorized || req.retried {
			return resp, err
		}

		token, err := r.renew(ctx, resp.Token)
		if err != nil {
			return nil, err
		}

		retry := req.clone()
		retry.retried = true
		retry.Header.Set("Authorization", "Bearer "+token)
		r.metrics.ObserveRetry()
		return next.Do(ctx, retry)
	})
}

// renew returns a token to retry with. used is the token the rejected request carried.
func (r *Reauth) renew(ctx context.Context, used string) (string, error) {
	// Another caller already replaced the token this request was sent with.
	if cur, ok := r.store.Get(); ok && cur != used {
		r.metrics.ObserveRefresh(metric.RefreshReused)
		return cur, nil
	}

	r.mu.Lock()
	// A late 401 for a session that already expired must not refresh again.
	expired := r.expired && (used == "" || used == r.expiredToken)
	r.mu.Unlock()
	if expired {
		return "", domain.ErrSessionExpired.WithDetails("refresh already failed for this token")
	}

	if !r.shared {
		return r.refresh(ctx, used)
	}

	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.refresh(ctx, used)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", classifyTransportError(ctx.Err())
	}
}

// refresh performs one refresh call. It is detached from the caller's
// cancellation so that waiters sharing it are not failed by one caller leaving.
func (r *Reauth) refresh(ctx context.Context, used string) (string, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	start := time.Now()
	token, err := r.refresher.Refresh(rctx)
	if err == nil {
		if serr := r.store.Set(token); serr != nil {
			err = serr
		}
	}
	if err != nil {
		r.metrics.ObserveRefresh(metric.RefreshFailure)
		r.logger.Warn("token refresh failed", "error", err, "elapsed", time.Since(start))
		return "", r.expire(context.WithoutCancel(ctx), used, err)
	}

	r.metrics.ObserveRefresh(metric.RefreshSuccess)
	r.logger.Debug("token refreshed", "elapsed", time.Since(start))

	r.mu.Lock()
	r.expired, r.expiredToken = false, ""
	r.mu.Unlock()
	return token, nil
}

func (r *Reauth) expire(ctx context.Context, used string, cause error) error {
	if err := r.store.Clear(); err != nil {
		r.logger.Error("failed to clear credential store", "error", err)
	}

	r.mu.Lock()
	r.expired, r.expiredToken = true, used
	handlers := append([]ExpiredHandler(nil), r.handlers...)
	r.mu.Unlock()

	r.metrics.ObserveExpired()
	sessionErr := domain.ErrSessionExpired.WithCause(cause)
	for _, h := range handlers {
		h(ctx, sessionErr)
	}
	return sessionErr
}
