package client

import (
	"errors"
	"testing"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/credstore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.BaseURL != DefaultBaseURL || cfg.Server.Timeout != DefaultTimeout {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Server.SharedRefresh {
		t.Error("shared refresh should be on by default")
	}
	if cfg.Profile.Kind != auth.ProfileVault || cfg.Store.Backend != credstore.BackendFile {
		t.Errorf("profile/store = %q/%q", cfg.Profile.Kind, cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"host without scheme", func(c *Config) { c.Server.BaseURL = "api.local:8080" }, false},
		{"https", func(c *Config) { c.Server.BaseURL = "https://api.example.com" }, false},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"ftp", func(c *Config) { c.Server.BaseURL = "ftp://files.example.com" }, true},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -1 }, true},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, true},
		{"unknown profile", func(c *Config) { c.Profile.Kind = "shop" }, true},
		{"unknown store", func(c *Config) { c.Store.Backend = "etcd" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error %v is not ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_EndpointOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profile.Kind = auth.ProfileMarket
	cfg.Profile.Paths = auth.Endpoints{Refresh: "/auth/refresh", Logout: "/auth/logout"}

	e, err := cfg.Endpoints()
	if err != nil {
		t.Fatal(err)
	}
	if e.Refresh != "/auth/refresh" || e.Logout != "/auth/logout" {
		t.Errorf("overrides not applied: %+v", e)
	}
	if e.Profile != auth.MarketEndpoints().Profile || e.Login != auth.MarketEndpoints().Login {
		t.Errorf("defaults lost: %+v", e)
	}
}
