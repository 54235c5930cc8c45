package benchmark

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessionkit-go/internal/client"
	"github.com/yndnr/sessionkit-go/internal/core/service"
	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/internal/server/config"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// GrantCounts are the table sizes the grant benchmarks run against.
var GrantCounts = []int{1000, 10000, 100000}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// signedIn starts a vault mock API and returns a client logged in to it.
func signedIn(b *testing.B) (*client.Client, *clock) {
	b.Helper()
	ctx := context.Background()
	clk := &clock{now: time.Now()}

	h, err := handler.New("vault", config.AuthSection{
		JWTSecret:  "bench-secret",
		SessionKey: "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: 24 * time.Hour,
		CookieName: "refreshToken",
		BcryptCost: bcrypt.MinCost,
	}, handler.WithClock(clk.Now))
	if err != nil {
		b.Fatal(err)
	}
	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{Handler: h}))
	b.Cleanup(srv.Close)

	store, err := credstore.Open(ctx, credstore.NewMemoryBackend())
	if err != nil {
		b.Fatal(err)
	}
	cfg := client.DefaultConfig()
	cfg.Server.BaseURL = srv.URL
	cfg.Profile.Kind = "vault"
	cfg.Store.Backend = credstore.BackendMemory
	c, err := client.New(ctx, cfg, client.WithStore(store))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { c.Close() })

	form := service.RegistrationForm{"username": "bench", "email": "bench@example.com", "password": "pw"}
	if err := c.Session.Register(ctx, form); err != nil {
		b.Fatal(err)
	}
	if err := c.Session.Login(ctx, "bench@example.com", "pw"); err != nil {
		b.Fatal(err)
	}
	return c, clk
}
