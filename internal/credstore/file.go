package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/yndnr/sessionkit-go/internal/infra/confloader"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

// FileBackend stores all records in one JSON document.
//
// Every write replaces the document atomically (temp file, fsync, rename) with
// mode 0600, so a crash never leaves a half-written credential file behind.
// Values are stored as raw bytes (base64 in JSON); wrap the backend with
// Sealed to encrypt them.
type FileBackend struct {
	path   string
	logger logger.Logger

	mu      sync.Mutex
	watcher *confloader.Watcher
}

// NewFileBackend creates a backend at path, creating the parent directory (0700) if needed.
func NewFileBackend(path string, l logger.Logger) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("credstore: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create dir: %w", err)
	}
	return &FileBackend{path: path, logger: logger.OrNop(l)}, nil
}

// Path returns the document path.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) read() (map[string][]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	records := map[string][]byte{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("credstore: decode %s: %w", f.path, err)
	}
	return records, nil
}

func (f *FileBackend) write(records map[string][]byte) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

// Load returns the record stored under key.
func (f *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return nil, err
	}
	v, ok := records[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

// Save stores value under key.
func (f *FileBackend) Save(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return err
	}
	records[key] = value
	return f.write(records)
}

// Delete removes the record. The file is removed once it holds no records.
func (f *FileBackend) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	if len(records) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return f.write(records)
}

// Watch calls onChange whenever the document is modified, including by
// another process. Only one watch is active per backend.
func (f *FileBackend) Watch(onChange func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return errors.New("credstore: file backend is already watched")
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(f.logger))
	if err != nil {
		return err
	}
	if err := w.Watch(f.path); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(func(string) { onChange() })
	w.StartAsync()
	f.watcher = w
	return nil
}

// Close stops the watcher, if any.
func (f *FileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		err := f.watcher.Stop()
		f.watcher = nil
		return err
	}
	return nil
}
