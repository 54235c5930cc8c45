package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/server/config"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

// LogoutPath is served for both profiles.
const LogoutPath = "/logout"

const (
	userIDKey  = "user_id"
	refreshKey = "rid"
)

// Handler serves one product profile of the mock API.
type Handler struct {
	profile   string
	endpoints auth.Endpoints
	cfg       config.AuthSection

	users   *Directory
	issuer  *Issuer
	grants  *Grants
	catalog *catalog
	cookies *sessions.CookieStore

	logger  logger.Logger
	metrics *metric.Registry
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		h.logger = logger.OrNop(l)
	}
}

// WithMetrics records issued tokens into m.
func WithMetrics(m *metric.Registry) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithClock replaces time.Now for token and grant expiry.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New creates a Handler for profile.
func New(profile string, cfg config.AuthSection, opts ...Option) (*Handler, error) {
	endpoints, err := auth.EndpointsFor(profile)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		profile:   profile,
		endpoints: endpoints,
		cfg:       cfg,
		users:     NewDirectory(cfg.BcryptCost),
		catalog:   &catalog{},
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.issuer = NewIssuer(cfg.JWTSecret, cfg.AccessTTL, h.now)
	h.grants = NewGrants(cfg.RefreshTTL, h.now)
	h.cookies = sessions.NewCookieStore([]byte(cfg.SessionKey))
	h.cookies.MaxAge(int(cfg.RefreshTTL / time.Second))
	return h, nil
}

// Profile returns the product profile being served.
func (h *Handler) Profile() string {
	return h.profile
}

// Users exposes the account store, for seeding.
func (h *Handler) Users() *Directory {
	return h.users
}

// Register mounts every route of the profile on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.handleHealth)

	r.POST(h.endpoints.Login, h.handleLogin)
	r.POST(h.endpoints.Register, h.handleRegister)
	r.POST(h.endpoints.Refresh, h.handleRefresh)
	r.POST(LogoutPath, h.handleLogout)

	authed := r.Group("", h.RequireAuth())
	switch h.profile {
	case auth.ProfileVault:
		authed.GET(h.endpoints.Profile, h.handleDashboard)
		authed.GET("/allpassword", h.handleListPasswords)
		authed.POST("/addnewpassword", h.handleAddPassword)
		authed.GET("/todos/view", h.handleListTodos)
		authed.POST("/todos/add", h.handleAddTodo)
	case auth.ProfileMarket:
		r.GET("/marketplace", h.handleMarketplace)
		authed.GET(h.endpoints.Profile, h.handleAgent)
		authed.POST("/addproduct", h.handleAddProduct)
		authed.GET("/verify/:reference", h.handleVerify)
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, "Access token missing")
			return
		}

		userID, err := h.issuer.Verify(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}
		if _, ok := h.users.Get(userID); !ok {
			respondError(c, http.StatusUnauthorized, "Unknown user")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, MessageResponse{Message: message})
}
