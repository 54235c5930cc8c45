package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Default configuration values.
const (
	DefaultAddr    = "127.0.0.1:5000"
	DefaultProfile = "vault"

	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultCookieName = "refreshToken"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default mock API configuration. Secrets are left
// empty; Verify rejects them until set.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:    DefaultAddr,
			Profile: DefaultProfile,
			Metrics: true,
		},
		Auth: AuthSection{
			AccessTTL:  DefaultAccessTTL,
			RefreshTTL: DefaultRefreshTTL,
			CookieName: DefaultCookieName,
			BcryptCost: bcrypt.DefaultCost,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
