package credstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

// Backend names accepted by Config.Backend.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures the credential backend.
type Config struct {
	Backend       string `koanf:"backend" yaml:"backend"`
	Path          string `koanf:"path" yaml:"path,omitempty"`
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key,omitempty"`
	RedisURL      string `koanf:"redis_url" yaml:"redis_url,omitempty"`
	Namespace     string `koanf:"namespace" yaml:"namespace,omitempty"`
	Watch         bool   `koanf:"watch" yaml:"watch"`
}

// DefaultDir returns ~/.sessionkit, or ./.sessionkit when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sessionkit"
	}
	return filepath.Join(home, ".sessionkit")
}

// DefaultPath returns the default location for a backend's data.
func DefaultPath(backend string) string {
	switch backend {
	case BackendBadger:
		return filepath.Join(DefaultDir(), "credentials.db")
	default:
		return filepath.Join(DefaultDir(), "credentials.json")
	}
}

// Validate checks the configuration without opening anything.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendBadger, BackendMemory, "":
	case BackendRedis:
		if c.RedisURL == "" {
			return domain.ErrInvalidConfig.WithDetails("store.redis_url is required for the redis backend")
		}
	default:
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("unknown store.backend %q", c.Backend))
	}
	return nil
}

// OpenBackend builds the raw backend described by cfg, sealed when an encryption key is set.
func OpenBackend(cfg Config, l logger.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath(cfg.Backend)
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case BackendMemory:
		backend = NewMemoryBackend()
	case BackendBadger:
		bc := DefaultBadgerConfig(path)
		if cfg.Namespace != "" {
			bc.Namespace = cfg.Namespace
		}
		backend, err = NewBadgerBackend(bc, l)
	case BackendRedis:
		backend, err = NewRedisBackend(cfg.RedisURL, cfg.Namespace)
	default:
		backend, err = NewFileBackend(path, l)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey == "" {
		return backend, nil
	}
	key, err := DeriveKey(cfg.EncryptionKey)
	if err != nil {
		backend.Close()
		return nil, err
	}
	sealed, err := Sealed(backend, key)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return sealed, nil
}

// OpenConfig opens the backend described by cfg and wraps it in a Cached store.
// With Watch set on a file backend, changes written by other processes are
// picked up without a restart.
func OpenConfig(ctx context.Context, cfg Config, l logger.Logger) (*Cached, error) {
	l = logger.OrNop(l)
	backend, err := OpenBackend(cfg, l)
	if err != nil {
		return nil, err
	}

	store, err := Open(ctx, backend, WithLogger(l))
	if err != nil {
		backend.Close()
		return nil, err
	}

	if cfg.Watch {
		if fb := fileBackendOf(backend); fb != nil {
			err := fb.Watch(func() {
				if err := store.Reload(context.Background()); err != nil {
					l.Warn("reload credentials after external change failed", "error", err)
				}
			})
			if err != nil {
				l.Warn("credential file watch disabled", "path", fb.Path(), "error", err)
			}
		}
	}

	l.Debug("credential store opened", "backend", cfg.Backend, "sealed", cfg.EncryptionKey != "")
	return store, nil
}

func fileBackendOf(b Backend) *FileBackend {
	switch v := b.(type) {
	case *FileBackend:
		return v
	case *SealedBackend:
		return fileBackendOf(v.inner)
	}
	return nil
}
