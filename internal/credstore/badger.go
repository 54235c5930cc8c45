package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

// BadgerConfig configures the badger backend.
type BadgerConfig struct {
	// Dir is the database directory.
	Dir string
	// Namespace prefixes every key, so one database can hold several profiles.
	Namespace string
	// GCInterval is the value-log GC period. Zero disables the GC loop.
	GCInterval time.Duration
	// GCThreshold is the discard ratio passed to RunValueLogGC.
	GCThreshold float64
	// InMemory runs badger without touching disk (tests).
	InMemory bool
}

// DefaultBadgerConfig returns settings sized for a handful of small records.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		Namespace:   "default",
		GCInterval:  30 * time.Minute,
		GCThreshold: 0.5,
	}
}

// BadgerBackend stores records in a badger database.
type BadgerBackend struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerBackend opens (or creates) the database.
func NewBadgerBackend(cfg BadgerConfig, l logger.Logger) (*BadgerBackend, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("credstore: badger dir is required")
	}
	l = logger.OrNop(l)

	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithLogger(&badgerLogger{logger: l.With("component", "badger")}).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(8 << 20)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("credstore: open badger: %w", err)
	}

	b := &BadgerBackend{
		db:     db,
		cfg:    cfg,
		logger: l,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go b.gcLoop()

	l.Debug("badger credential store opened", "dir", cfg.Dir, "namespace", cfg.Namespace)
	return b, nil
}

func (b *BadgerBackend) key(key string) []byte {
	return []byte(b.cfg.Namespace + "/" + key)
}

// Load returns the record stored under key.
func (b *BadgerBackend) Load(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Save stores value under key.
func (b *BadgerBackend) Save(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), value)
	})
}

// Delete removes the record.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
}

// GC runs value-log garbage collection until badger reports nothing to rewrite.
func (b *BadgerBackend) GC() error {
	if b.cfg.InMemory {
		return nil
	}
	rounds := 0
	for {
		err := b.db.RunValueLogGC(b.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("credstore: badger gc: %w", err)
		}
		rounds++
	}
	b.logger.Debug("badger gc completed", "rounds", rounds)
	return nil
}

func (b *BadgerBackend) gcLoop() {
	defer close(b.doneCh)
	if b.cfg.GCInterval <= 0 {
		<-b.stopCh
		return
	}

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := b.GC(); err != nil {
				b.logger.Warn("badger gc failed", "error", err)
			}
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the GC loop and closes the database.
func (b *BadgerBackend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("credstore: close badger: %w", err)
	}
	return nil
}

// badgerLogger adapts logger.Logger to badger's Logger interface.
// Badger's info output is chatty, so it is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
