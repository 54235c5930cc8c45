package config

import "time"

// ServerConfig is the root configuration for sessionkit-mockapi.
type ServerConfig struct {
	Server ServerSection `koanf:"server" yaml:"server"`
	Auth   AuthSection   `koanf:"auth" yaml:"auth"`
	Log    LogSection    `koanf:"log" yaml:"log"`
}

// ServerSection configures the listener and which product the mock imitates.
type ServerSection struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	Profile     string `koanf:"profile" yaml:"profile"`
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file"`
	Metrics     bool   `koanf:"metrics" yaml:"metrics"`
}

// AuthSection configures token issuance and the refresh cookie.
type AuthSection struct {
	// JWTSecret signs access tokens (HS256).
	JWTSecret string `koanf:"jwt_secret" yaml:"jwt_secret"`

	// SessionKey authenticates the refresh cookie. At least 32 bytes.
	SessionKey string `koanf:"session_key" yaml:"session_key"`

	AccessTTL    time.Duration `koanf:"access_ttl" yaml:"access_ttl"`
	RefreshTTL   time.Duration `koanf:"refresh_ttl" yaml:"refresh_ttl"`
	CookieName   string        `koanf:"cookie_name" yaml:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure" yaml:"cookie_secure"`

	// BcryptCost is lowered in tests.
	BcryptCost int `koanf:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
