package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

// Record keys used by Cached.
const (
	KeyAccessToken = "access_token"
	KeyCookies     = "cookies"
)

// ErrKeyNotFound is returned by a Backend when a record does not exist.
var ErrKeyNotFound = domain.ErrStoreKeyNotFound

// Store holds the current access token.
//
// Get is served from memory and never blocks on IO. Set returns only after
// the token is persisted.
type Store interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// Backend persists opaque records by key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Cached is the Store implementation used by the client: an in-memory copy of
// the token in front of a durable Backend. It also keeps the refresh cookies
// so that they survive a restart.
type Cached struct {
	backend   Backend
	logger    logger.Logger
	ioTimeout time.Duration

	// writeMu serializes backend writes; mu only guards the cached token so
	// Get never waits on IO.
	writeMu sync.Mutex
	mu      sync.RWMutex
	token   string
}

// Option configures a Cached store.
type Option func(*Cached)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cached) {
		c.logger = logger.OrNop(l)
	}
}

// WithIOTimeout bounds each backend call made by Set, Clear and Reload.
func WithIOTimeout(d time.Duration) Option {
	return func(c *Cached) {
		if d > 0 {
			c.ioTimeout = d
		}
	}
}

// Open loads the persisted token from backend and returns a ready store.
// A missing record is an empty store, not an error.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Cached, error) {
	c := &Cached{
		backend:   backend,
		logger:    logger.Nop(),
		ioTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the cached token.
func (c *Cached) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// Set persists token and then updates the cache. An empty token clears the store.
func (c *Cached) Set(token string) error {
	if token == "" {
		return c.Clear()
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.ioTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.backend.Save(ctx, KeyAccessToken, []byte(token)); err != nil {
		return domain.ErrStore.WithDetails("save access token").WithCause(err)
	}
	c.setToken(token)
	return nil
}

// Clear removes the token. Clearing an empty store succeeds. The cache is
// emptied even when the backend fails; if the record cannot be deleted it is
// overwritten with an empty value so it does not come back on the next Open.
func (c *Cached) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.ioTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	defer c.setToken("")

	err := c.backend.Delete(ctx, KeyAccessToken)
	if err == nil || errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	c.logger.Warn("failed to delete access token, overwriting", "error", err)
	if serr := c.backend.Save(ctx, KeyAccessToken, nil); serr != nil {
		return domain.ErrStore.WithDetails("delete access token").WithCause(errors.Join(err, serr))
	}
	return nil
}

// Reload re-reads the token from the backend, picking up changes made by
// another process sharing the same backend.
func (c *Cached) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.ioTimeout)
	defer cancel()
	return c.reload(ctx)
}

func (c *Cached) reload(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	raw, err := c.backend.Load(ctx, KeyAccessToken)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return domain.ErrStore.WithDetails("load access token").WithCause(err)
	}

	c.mu.Lock()
	prev := c.token
	c.token = string(raw)
	c.mu.Unlock()

	if prev != string(raw) {
		c.logger.Debug("access token reloaded", "present", len(raw) > 0)
	}
	return nil
}

func (c *Cached) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Close releases the backend.
func (c *Cached) Close() error {
	return c.backend.Close()
}

// storedCookie is the persisted form of an http.Cookie.
type storedCookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitzero"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

// LoadCookies returns the persisted cookies, dropping expired ones.
func (c *Cached) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	raw, err := c.backend.Load(ctx, KeyCookies)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrStore.WithDetails("load cookies").WithCause(err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, domain.ErrStore.WithDetails("decode cookies").WithCause(err)
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		if !s.Expires.IsZero() && s.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     s.Name,
			Value:    s.Value,
			Path:     s.Path,
			Domain:   s.Domain,
			Expires:  s.Expires,
			Secure:   s.Secure,
			HttpOnly: s.HttpOnly,
			SameSite: s.SameSite,
		})
	}
	return cookies, nil
}

// SaveCookies replaces the persisted cookies.
func (c *Cached) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return c.ClearCookies(ctx)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     ck.Path,
			Domain:   ck.Domain,
			Expires:  ck.Expires,
			Secure:   ck.Secure,
			HttpOnly: ck.HttpOnly,
			SameSite: ck.SameSite,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.backend.Save(ctx, KeyCookies, raw); err != nil {
		return domain.ErrStore.WithDetails("save cookies").WithCause(err)
	}
	return nil
}

// ClearCookies removes the persisted cookies.
func (c *Cached) ClearCookies(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.backend.Delete(ctx, KeyCookies); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return domain.ErrStore.WithDetails("delete cookies").WithCause(err)
	}
	return nil
}
