package config

import (
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/core/domain"
)

// MinSessionKeyLen is the shortest accepted cookie authentication key.
const MinSessionKeyLen = 32

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	return verifyAuth(&cfg.Auth)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return domain.ErrInvalidConfig.WithDetails("server.addr is required")
	}
	if _, err := auth.EndpointsFor(cfg.Profile); err != nil {
		return err
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return domain.ErrInvalidConfig.WithDetails("server.tls_cert_file and server.tls_key_file must be set together")
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return domain.ErrInvalidConfig.WithDetails("cannot read " + f).WithCause(err)
		}
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	if cfg.JWTSecret == "" {
		return domain.ErrInvalidConfig.WithDetails("auth.jwt_secret is required")
	}
	if len(cfg.SessionKey) < MinSessionKeyLen {
		return domain.ErrInvalidConfig.WithDetails("auth.session_key must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return domain.ErrInvalidConfig.WithDetails("auth.access_ttl and auth.refresh_ttl must be positive")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return domain.ErrInvalidConfig.WithDetails("auth.refresh_ttl must not be shorter than auth.access_ttl")
	}
	if cfg.CookieName == "" {
		return domain.ErrInvalidConfig.WithDetails("auth.cookie_name is required")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return domain.ErrInvalidConfig.WithDetails("auth.bcrypt_cost out of range")
	}
	return nil
}
