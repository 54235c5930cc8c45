// Package client assembles the credential store, transport, session manager
// and resource clients into one ready-to-use Client.
package client

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/yndnr/sessionkit-go/internal/api"
	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/core/service"
	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/internal/infra/tlsroots"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// Client is a fully wired session-aware API client.
type Client struct {
	Config    Config
	Endpoints auth.Endpoints
	Store     *credstore.Cached
	Jar       *transport.PersistentJar
	Base      *transport.HTTPClient
	Reauth    *transport.Reauth
	API       *transport.Client
	Session   *service.SessionManager
	Vault     *api.VaultClient
	Market    *api.MarketClient
	Metrics   *metric.Registry

	logger logger.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	logger    logger.Logger
	metrics   *metric.Registry
	navigator service.Navigator
	store     *credstore.Cached
}

// WithLogger sets the logger of every component.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records client metrics into r and registers the session collector.
func WithMetrics(r *metric.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithNavigator receives the login route on forced logout.
func WithNavigator(n service.Navigator) Option {
	return func(o *options) {
		o.navigator = n
	}
}

// WithStore uses an already opened store instead of opening cfg.Store.
func WithStore(s *credstore.Cached) Option {
	return func(o *options) {
		o.store = s
	}
}

// New builds a Client from cfg. The session is not initialised; call Init.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.OrNop(o.logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}
	profile, err := auth.ProfileFor(cfg.Profile.Kind, endpoints.Profile)
	if err != nil {
		return nil, err
	}
	tlsConfig, err := tlsroots.ClientConfig(cfg.Server.CAFile)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store, err = credstore.OpenConfig(ctx, cfg.Store, log)
		if err != nil {
			return nil, err
		}
	}

	jar, err := transport.NewPersistentJar(ctx, transport.NormalizeBaseURL(cfg.Server.BaseURL), store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	base := transport.NewHTTPClient(cfg.Server.BaseURL,
		transport.WithTimeout(cfg.Server.Timeout),
		transport.WithTokenStore(store),
		transport.WithCookieJar(jar),
		transport.WithTLSConfig(tlsConfig),
		transport.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
		transport.WithUserAgent(cfg.Server.UserAgent),
		transport.WithLogger(log),
		transport.WithMetrics(o.metrics),
	)

	reauth := transport.NewReauth(auth.NewHTTPRefresher(base, endpoints.Refresh), store,
		transport.WithSharedRefresh(cfg.Server.SharedRefresh),
		transport.WithRefreshTimeout(cfg.Server.RefreshTimeout),
		transport.WithReauthLogger(log),
		transport.WithReauthMetrics(o.metrics),
	)
	apiClient := transport.NewClient(transport.Chain(base, reauth.Middleware()))

	sessionOpts := []service.SessionOption{
		service.WithReauth(reauth),
		service.WithCookies(jar),
		service.WithSessionLogger(log),
	}
	if o.navigator != nil {
		sessionOpts = append(sessionOpts, service.WithNavigator(o.navigator))
	}
	manager, err := service.NewSessionManager(service.SessionManagerConfig{
		Base:      base,
		API:       apiClient,
		Store:     store,
		Endpoints: endpoints,
		Profile:   profile,
	}, sessionOpts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	if o.metrics != nil {
		if err := o.metrics.Register(metric.NewSessionCollector(manager.Session)); err != nil {
			log.Warn("session collector not registered", "error", err)
		}
	}

	return &Client{
		Config:    cfg,
		Endpoints: endpoints,
		Store:     store,
		Jar:       jar,
		Base:      base,
		Reauth:    reauth,
		API:       apiClient,
		Session:   manager,
		Vault:     api.NewVaultClient(apiClient),
		Market:    api.NewMarketClient(apiClient),
		Metrics:   o.metrics,
		logger:    log,
	}, nil
}

// TokenSource returns the stored access token as an oauth2.TokenSource.
func (c *Client) TokenSource() oauth2.TokenSource {
	return auth.NewTokenSource(c.Store)
}

// Init restores the persisted session. Network and server errors are
// returned but leave the stored token in place.
func (c *Client) Init(ctx context.Context) error {
	return c.Session.Init(ctx)
}

// Close disposes the session manager and releases the store.
func (c *Client) Close() error {
	c.Session.Teardown()
	return c.Store.Close()
}
