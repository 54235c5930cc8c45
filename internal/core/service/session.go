package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

const logoutNotifyTimeout = 5 * time.Second

// Navigator receives the login route when the session is forcibly ended.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	f(ctx, route)
}

// CookieClearer drops the refresh cookie. transport.PersistentJar implements it.
type CookieClearer interface {
	Clear(ctx context.Context) error
}

// RegistrationForm is the registration payload: the profile fields of the
// product plus "password".
type RegistrationForm map[string]string

// SessionManagerConfig holds the collaborators of a SessionManager.
type SessionManagerConfig struct {
	// Base sends login, register and logout requests. It must not be wrapped
	// by the reauth middleware.
	Base transport.Doer
	// API sends authenticated requests through the reauth middleware.
	API *transport.Client
	// Store holds the access token.
	Store transport.TokenStore
	// Endpoints are the auth paths of the product.
	Endpoints auth.Endpoints
	// Profile fetches and decodes the principal.
	Profile auth.ProfileEndpoint
}

// SessionManager owns the Session of one client.
type SessionManager struct {
	base      transport.Doer
	api       *transport.Client
	store     transport.TokenStore
	endpoints auth.Endpoints
	profile   auth.ProfileEndpoint
	cookies   CookieClearer
	reauth    *transport.Reauth
	navigator Navigator
	logger    logger.Logger

	mu        sync.RWMutex
	principal *domain.Principal
	loading   bool
	disposed  bool
	nextID    int
	listeners map[int]func(domain.Session)
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithNavigator sets where forced logouts are sent.
func WithNavigator(n Navigator) SessionOption {
	return func(m *SessionManager) {
		m.navigator = n
	}
}

// WithCookies clears the refresh cookie on logout.
func WithCookies(c CookieClearer) SessionOption {
	return func(m *SessionManager) {
		m.cookies = c
	}
}

// WithReauth registers the manager as the expiry handler of r.
func WithReauth(r *transport.Reauth) SessionOption {
	return func(m *SessionManager) {
		m.reauth = r
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(m *SessionManager) {
		m.logger = logger.OrNop(l)
	}
}

// NewSessionManager creates a manager in the loading state.
func NewSessionManager(cfg SessionManagerConfig, opts ...SessionOption) (*SessionManager, error) {
	switch {
	case cfg.Base == nil:
		return nil, domain.ErrMissingArgument.WithDetails("base doer is required")
	case cfg.API == nil:
		return nil, domain.ErrMissingArgument.WithDetails("api client is required")
	case cfg.Store == nil:
		return nil, domain.ErrMissingArgument.WithDetails("credential store is required")
	case cfg.Profile == nil:
		return nil, domain.ErrMissingArgument.WithDetails("profile endpoint is required")
	}

	m := &SessionManager{
		base:      cfg.Base,
		api:       cfg.API,
		store:     cfg.Store,
		endpoints: cfg.Endpoints,
		profile:   cfg.Profile,
		logger:    logger.Nop(),
		loading:   true,
		listeners: make(map[int]func(domain.Session)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reauth != nil {
		m.reauth.OnExpired(m.HandleSessionExpired)
	}
	return m, nil
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *SessionManager) snapshotLocked() domain.Session {
	_, hasToken := m.store.Get()
	return domain.Session{
		Principal: m.principal.Clone(),
		HasToken:  hasToken,
		Loading:   m.loading,
	}
}

// OnChange registers fn to receive every session change. The returned
// function unregisters it.
func (m *SessionManager) OnChange(fn func(domain.Session)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Init confirms a stored token by fetching the principal. A 401 goes through
// the refresh protocol first. Loading is false when Init returns.
func (m *SessionManager) Init(ctx context.Context) error {
	if _, ok := m.store.Get(); !ok {
		m.update(func() { m.loading = false })
		return nil
	}

	p, err := m.fetchProfile(ctx)
	switch {
	case err == nil:
		m.update(func() {
			m.principal = p
			m.loading = false
		})
		return nil
	case errors.Is(err, domain.ErrSessionExpired):
		// The expiry handler has already torn the session down.
	case errors.Is(err, domain.ErrNotAuthenticated):
		m.logger.Info("stored token rejected, clearing session")
		m.clearLocal(ctx)
	default:
		m.logger.Warn("failed to confirm stored session", "error", err)
	}
	m.update(func() { m.loading = false })
	return err
}

// Login authenticates with the server and loads the principal.
// Nothing is stored when the server rejects the credentials. Loading is
// false when Login returns.
func (m *SessionManager) Login(ctx context.Context, identifier, secret string) error {
	p, err := m.login(ctx, identifier, secret)
	m.update(func() {
		switch {
		case err == nil:
			m.principal = p
		case !m.hasToken():
			m.principal = nil
		}
		m.loading = false
	})
	if err != nil {
		return err
	}
	m.logger.Info("logged in", "principal", p.ID)
	return nil
}

func (m *SessionManager) login(ctx context.Context, identifier, secret string) (*domain.Principal, error) {
	if identifier == "" || secret == "" {
		return nil, domain.ErrMissingArgument.WithDetails("email and password are required")
	}

	resp, err := m.base.Do(ctx, transport.NewRequest(http.MethodPost, m.endpoints.Login,
		auth.Credentials{Email: identifier, Password: secret}))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		msg := transport.ServerMessage(resp.Body)
		if msg == "" {
			msg = "Login failed"
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, domain.ErrServer.WithStatus(resp.StatusCode).WithDetails(msg)
		}
		return nil, domain.ErrAuthentication.WithStatus(resp.StatusCode).WithDetails(msg)
	}

	token, err := auth.TokenFromResponse(resp)
	if err != nil {
		return nil, err
	}
	if m.reauth != nil {
		m.reauth.Reset()
	}
	if err := m.store.Set(token); err != nil {
		return nil, err
	}

	p, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Warn("profile fetch after login failed", "error", err)
		if cerr := m.store.Clear(); cerr != nil {
			m.logger.Error("failed to clear credential store", "error", cerr)
		}
		return nil, err
	}
	return p, nil
}

// Register creates an account. It never authenticates; call Login afterwards.
func (m *SessionManager) Register(ctx context.Context, form RegistrationForm) error {
	if form["email"] == "" || form["password"] == "" {
		return domain.ErrMissingArgument.WithDetails("email and password are required")
	}

	resp, err := m.base.Do(ctx, transport.NewRequest(http.MethodPost, m.endpoints.Register, form))
	if err != nil {
		return err
	}
	if resp.OK() {
		return nil
	}

	msg := transport.ServerMessage(resp.Body)
	if msg == "" {
		msg = "Registration failed"
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.ErrServer.WithStatus(resp.StatusCode).WithDetails(msg)
	}
	return domain.ErrValidation.WithStatus(resp.StatusCode).WithDetails(msg)
}

// Logout ends the session. It always succeeds locally; the server is told
// first when a logout endpoint is configured.
func (m *SessionManager) Logout(ctx context.Context) {
	if _, ok := m.store.Get(); ok && m.endpoints.Logout != "" {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutNotifyTimeout)
		resp, err := m.base.Do(nctx, transport.NewRequest(http.MethodPost, m.endpoints.Logout, nil))
		cancel()
		switch {
		case err != nil:
			m.logger.Warn("logout notification failed", "error", err)
		case !resp.OK():
			m.logger.Debug("server rejected logout notification", "status", resp.StatusCode)
		}
	}
	m.clearLocal(ctx)
}

// RefreshProfile re-fetches the principal. Without a token it does nothing.
// A failure is logged and returned; the session is left as it was.
func (m *SessionManager) RefreshProfile(ctx context.Context) error {
	if _, ok := m.store.Get(); !ok {
		return nil
	}
	p, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Warn("profile refresh failed", "error", err)
		return err
	}
	m.update(func() { m.principal = p })
	return nil
}

// HandleSessionExpired tears the session down after a failed refresh and
// sends the user to the login route.
func (m *SessionManager) HandleSessionExpired(ctx context.Context, err error) {
	m.logger.Warn("session expired", "error", err)
	m.clearLocal(ctx)
	if m.navigator != nil && m.endpoints.LoginRoute != "" {
		m.navigator.Navigate(ctx, m.endpoints.LoginRoute)
	}
}

// Teardown disposes the manager. Later results are discarded and listeners
// are no longer called.
func (m *SessionManager) Teardown() {
	m.mu.Lock()
	m.disposed = true
	m.listeners = make(map[int]func(domain.Session))
	m.mu.Unlock()
}

func (m *SessionManager) fetchProfile(ctx context.Context) (*domain.Principal, error) {
	resp, err := m.api.Do(ctx, transport.NewRequest(http.MethodGet, m.profile.Path(), nil))
	if err != nil {
		return nil, err
	}
	return m.profile.Decode(resp.Body)
}

func (m *SessionManager) clearLocal(ctx context.Context) {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear credential store", "error", err)
	}
	if m.cookies != nil {
		if err := m.cookies.Clear(ctx); err != nil {
			m.logger.Warn("failed to clear cookies", "error", err)
		}
	}
	m.update(func() {
		m.principal = nil
		m.loading = false
	})
}

func (m *SessionManager) hasToken() bool {
	_, ok := m.store.Get()
	return ok
}

// update applies fn under the lock and notifies listeners. It is a no-op
// after Teardown.
func (m *SessionManager) update(fn func()) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	fn()
	snap := m.snapshotLocked()
	listeners := make([]func(domain.Session), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
