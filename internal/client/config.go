package client

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// Default configuration values.
const (
	DefaultBaseURL        = "http://localhost:5000"
	DefaultTimeout        = 30 * time.Second
	DefaultRefreshTimeout = 15 * time.Second
)

// Config describes one client: where the API is, which product it speaks and
// where credentials live.
type Config struct {
	Server  ServerSection    `koanf:"server" yaml:"server"`
	Profile ProfileSection   `koanf:"profile" yaml:"profile"`
	Store   credstore.Config `koanf:"store" yaml:"store"`
}

// ServerSection configures the HTTP side.
type ServerSection struct {
	BaseURL        string        `koanf:"base_url" yaml:"base_url"`
	Timeout        time.Duration `koanf:"timeout" yaml:"timeout"`
	RefreshTimeout time.Duration `koanf:"refresh_timeout" yaml:"refresh_timeout"`
	// SharedRefresh lets concurrent 401s wait for one refresh call.
	SharedRefresh bool    `koanf:"shared_refresh" yaml:"shared_refresh"`
	RateLimit     float64 `koanf:"rate_limit" yaml:"rate_limit,omitempty"`
	Burst         int     `koanf:"burst" yaml:"burst,omitempty"`
	CAFile        string  `koanf:"ca_file" yaml:"ca_file,omitempty"`
	UserAgent     string  `koanf:"user_agent" yaml:"user_agent,omitempty"`
}

// ProfileSection selects the product and optionally overrides its paths.
type ProfileSection struct {
	Kind  string         `koanf:"kind" yaml:"kind"`
	Paths auth.Endpoints `koanf:"paths" yaml:"paths,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Server: ServerSection{
			BaseURL:        DefaultBaseURL,
			Timeout:        DefaultTimeout,
			RefreshTimeout: DefaultRefreshTimeout,
			SharedRefresh:  true,
		},
		Profile: ProfileSection{
			Kind: auth.ProfileVault,
		},
		Store: credstore.Config{
			Backend: credstore.BackendFile,
		},
	}
}

// Endpoints returns the profile's endpoints with configured overrides applied.
func (c Config) Endpoints() (auth.Endpoints, error) {
	base, err := auth.EndpointsFor(c.Profile.Kind)
	if err != nil {
		return auth.Endpoints{}, err
	}
	return base.Merge(c.Profile.Paths), nil
}

// Validate checks the configuration without opening anything.
func (c Config) Validate() error {
	raw := c.Server.BaseURL
	if scheme, _, ok := strings.Cut(raw, "://"); ok && scheme != "http" && scheme != "https" {
		return domain.ErrInvalidConfig.WithDetails("server.base_url must use http or https")
	}
	u, err := url.Parse(transport.NormalizeBaseURL(raw))
	if raw == "" || err != nil || u.Host == "" {
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("server.base_url %q is not a valid URL", raw))
	}
	if c.Server.Timeout < 0 || c.Server.RefreshTimeout < 0 {
		return domain.ErrInvalidConfig.WithDetails("timeouts must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return domain.ErrInvalidConfig.WithDetails("server.rate_limit must not be negative")
	}
	if _, err := c.Endpoints(); err != nil {
		return err
	}
	return c.Store.Validate()
}
