package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessionkit-go/internal/api"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/core/service"
	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/internal/server/config"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serverClock lets a test expire the mock's tokens without sleeping.
type serverClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *serverClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *serverClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type navigations struct {
	mu     sync.Mutex
	routes []string
}

func (n *navigations) Navigate(_ context.Context, route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *navigations) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type e2e struct {
	t       *testing.T
	url     string
	clock   *serverClock
	backend *credstore.MemoryBackend
	profile string
}

func newE2E(t *testing.T, profile string) *e2e {
	t.Helper()
	clock := &serverClock{now: time.Now()}
	h, err := handler.New(profile, config.AuthSection{
		JWTSecret:  "e2e-secret",
		SessionKey: "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		CookieName: "refreshToken",
		BcryptCost: bcrypt.MinCost,
	}, handler.WithClock(clock.Now))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{Handler: h}))
	t.Cleanup(srv.Close)

	return &e2e{t: t, url: srv.URL, clock: clock, backend: credstore.NewMemoryBackend(), profile: profile}
}

// client starts a new client process sharing the persisted credentials.
func (e *e2e) client(opts ...Option) *Client {
	e.t.Helper()
	ctx := context.Background()

	store, err := credstore.Open(ctx, e.backend)
	if err != nil {
		e.t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Server.BaseURL = e.url
	cfg.Server.Timeout = 5 * time.Second
	cfg.Profile.Kind = e.profile
	cfg.Profile.Paths.Logout = handler.LogoutPath
	cfg.Store.Backend = credstore.BackendMemory

	c, err := New(ctx, cfg, append([]Option{WithStore(store)}, opts...)...)
	if err != nil {
		e.t.Fatal(err)
	}
	e.t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_VaultLifecycle(t *testing.T) {
	env := newE2E(t, "vault")
	ctx := context.Background()
	metrics := metric.NewRegistry()
	nav := &navigations{}
	c := env.client(WithMetrics(metrics), WithNavigator(nav))

	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if s := c.Session.Session(); s.Loading || s.Authenticated() {
		t.Fatalf("fresh session = %+v", s)
	}

	form := service.RegistrationForm{"username": "ann", "email": "ann@example.com", "password": "pw"}
	if err := c.Session.Register(ctx, form); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if err := c.Session.Register(ctx, form); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate Register() = %v, want ErrValidation", err)
	}
	if c.Session.Session().HasToken {
		t.Error("registration must not authenticate")
	}

	err := c.Session.Login(ctx, "ann@example.com", "wrong")
	if !errors.Is(err, domain.ErrAuthentication) || domain.DetailsOf(err) != "Invalid email or password" {
		t.Errorf("bad Login() = %v", err)
	}
	if _, ok := c.Store.Get(); ok {
		t.Error("token stored after a rejected login")
	}

	if err := c.Session.Login(ctx, "ann@example.com", "pw"); err != nil {
		t.Fatalf("Login() = %v", err)
	}
	p := c.Session.Session().Principal
	if p == nil || p.Email != "ann@example.com" || p.DisplayName != "ann" {
		t.Fatalf("principal = %+v", p)
	}
	tok, err := c.TokenSource().Token()
	if err != nil {
		t.Fatalf("TokenSource().Token() = %v", err)
	}
	if stored, _ := c.Store.Get(); tok.AccessToken != stored {
		t.Errorf("token source returned %q, store holds %q", tok.AccessToken, stored)
	}
	if want := env.clock.Now().Add(time.Minute); tok.Expiry.Before(want.Add(-time.Second)) || tok.Expiry.After(want.Add(time.Second)) {
		t.Errorf("token expiry = %v, want about %v", tok.Expiry, want)
	}

	if err := c.Vault.AddPassword(ctx, api.Password{AppName: "mail", Username: "ann", Password: "abc"}); err != nil {
		t.Fatal(err)
	}
	todos, err := c.Vault.ListTodos(ctx)
	if err != nil || len(todos) != 0 {
		t.Errorf("ListTodos() on an empty vault = %v, %v", todos, err)
	}
	if msg, err := c.Vault.AddTodo(ctx, "rotate", "keys"); err != nil || msg != "Todo created successfully" {
		t.Errorf("AddTodo() = %q, %v", msg, err)
	}

	// The access token expires; the next call refreshes and retries.
	before, _ := c.Store.Get()
	env.clock.Advance(2 * time.Minute)
	report, err := c.Vault.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit() after expiry = %v", err)
	}
	if report.Total != 1 || report.Weak != 1 {
		t.Errorf("report = %+v", report)
	}
	after, _ := c.Store.Get()
	if after == before || after == "" {
		t.Error("token was not replaced by the refresh")
	}
	if got := testutil.ToFloat64(metrics.RefreshTotal.WithLabelValues(metric.RefreshSuccess)); got != 1 {
		t.Errorf("refresh successes = %v", got)
	}

	// A new process picks up the token and the refresh cookie.
	env.clock.Advance(2 * time.Minute)
	restarted := env.client()
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("Init() after restart = %v", err)
	}
	if !restarted.Session.Session().Authenticated() {
		t.Fatal("restarted client is not authenticated")
	}
	if todos, err := restarted.Vault.ListTodos(ctx); err != nil || len(todos) != 1 {
		t.Errorf("ListTodos() after restart = %v, %v", todos, err)
	}

	// Logout twice; nothing is left to refresh with.
	restarted.Session.Logout(ctx)
	restarted.Session.Logout(ctx)
	if _, ok := restarted.Store.Get(); ok {
		t.Error("token survived logout")
	}
	if _, err := restarted.TokenSource().Token(); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("Token() after logout = %v", err)
	}
	if cookies, _ := restarted.Store.LoadCookies(ctx); len(cookies) != 0 {
		t.Errorf("cookies survived logout: %v", cookies)
	}
	if len(nav.list()) != 0 {
		t.Errorf("unexpected navigation: %v", nav.list())
	}
}

func TestClient_RefreshFailureForcesLogout(t *testing.T) {
	env := newE2E(t, "vault")
	ctx := context.Background()
	nav := &navigations{}
	c := env.client(WithNavigator(nav))

	if err := c.Session.Register(ctx, service.RegistrationForm{"email": "ann@example.com", "password": "pw"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Session.Login(ctx, "ann@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	// Both the access token and the refresh grant expire.
	env.clock.Advance(2 * time.Hour)
	_, err := c.Vault.ListPasswords(ctx)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("ListPasswords() = %v, want ErrSessionExpired", err)
	}
	if s := c.Session.Session(); s.Authenticated() || s.HasToken {
		t.Errorf("session after forced logout = %+v", s)
	}
	if routes := nav.list(); len(routes) != 1 || routes[0] != "/login" {
		t.Errorf("navigations = %v", routes)
	}

	// A fresh login works again.
	if err := c.Session.Login(ctx, "ann@example.com", "pw"); err != nil {
		t.Fatalf("Login() after expiry = %v", err)
	}
	if _, err := c.Vault.ListPasswords(ctx); err != nil {
		t.Errorf("ListPasswords() after re-login = %v", err)
	}
}

func TestClient_ConcurrentExpiryRefreshesOnce(t *testing.T) {
	env := newE2E(t, "vault")
	ctx := context.Background()
	metrics := metric.NewRegistry()
	c := env.client(WithMetrics(metrics))

	c.Session.Register(ctx, service.RegistrationForm{"email": "ann@example.com", "password": "pw"})
	if err := c.Session.Login(ctx, "ann@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Vault.ListPasswords(ctx)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: %v", i, err)
		}
	}
	// The refresh cookie is single use, so a second refresh would have failed.
	if got := testutil.ToFloat64(metrics.RefreshTotal.WithLabelValues(metric.RefreshFailure)); got != 0 {
		t.Errorf("refresh failures = %v", got)
	}
}

func TestClient_MarketVerification(t *testing.T) {
	env := newE2E(t, "market")
	ctx := context.Background()
	c := env.client()

	form := service.RegistrationForm{"agentName": "bo", "phoneNumber": "0800", "email": "bo@example.com", "password": "pw"}
	if err := c.Session.Register(ctx, form); err != nil {
		t.Fatal(err)
	}
	if err := c.Session.Login(ctx, "bo@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if p := c.Session.Session().Principal; p == nil || p.Verified || p.DisplayName != "bo" {
		t.Fatalf("principal = %+v", p)
	}

	lamp := api.Product{Name: "Lamp", Description: "Desk lamp", Type: "home"}
	if err := c.Market.AddProduct(ctx, lamp); !errors.Is(err, domain.ErrRequestRejected) {
		t.Errorf("unverified AddProduct() = %v, want ErrRequestRejected", err)
	}

	res, err := c.Market.VerifyPayment(ctx, "fail-1")
	if err != nil || res.Successful {
		t.Errorf("declined VerifyPayment() = %+v, %v", res, err)
	}
	res, err = c.Market.VerifyPayment(ctx, "ref-1")
	if err != nil || !res.Successful {
		t.Fatalf("VerifyPayment() = %+v, %v", res, err)
	}

	// Payment changes the principal out of band.
	if err := c.Session.RefreshProfile(ctx); err != nil {
		t.Fatal(err)
	}
	if !c.Session.Session().Principal.Verified {
		t.Error("principal not verified after payment")
	}

	if err := c.Market.AddProduct(ctx, lamp); err != nil {
		t.Fatalf("AddProduct() = %v", err)
	}
	products, err := c.Market.ListProducts(ctx)
	if err != nil || len(products) != 1 || products[0].SellerName != "bo" || products[0].Description != "Desk lamp" {
		t.Errorf("ListProducts() = %+v, %v", products, err)
	}
}
