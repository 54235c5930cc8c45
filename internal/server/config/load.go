package config

import (
	"github.com/yndnr/sessionkit-go/internal/infra/confloader"
)

// EnvPrefix scopes the mock API's environment variables,
// e.g. SESSIONKIT_MOCK_AUTH_JWT_SECRET sets auth.jwt_secret.
const EnvPrefix = "SESSIONKIT_MOCK_"

// Load builds the configuration from defaults, the file at path (if any),
// the environment and finally overrides keyed by dotted path. The result is
// verified.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	cfg := Default()

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	l := confloader.NewLoader(opts...)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
