package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Server struct {
		BaseURL string `koanf:"base_url"`
		Timeout string `koanf:"timeout"`
	} `koanf:"server"`
	Store struct {
		Backend string `koanf:"backend"`
		Watch   bool   `koanf:"watch"`
	} `koanf:"store"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SESSIONKIT_SERVER_BASE_URL", "server.base_url"},
		{"SESSIONKIT_STORE_BACKEND", "store.backend"},
		{"SESSIONKIT_OUTPUT", "output"},
		{"SESSIONKIT_PROFILE_REFRESH_PATH", "profile.refresh_path"},
	}
	for _, tt := range tests {
		if got := EnvKey(DefaultEnvPrefix, tt.name); got != tt.want {
			t.Errorf("EnvKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoader_Priority(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  base_url: http://file.example
  timeout: 10s
store:
  backend: badger
`)
	t.Setenv("SKTEST_SERVER_BASE_URL", "http://env.example")

	l := NewLoader(
		WithEnvPrefix("SKTEST_"),
		WithConfigFile(path),
		WithDefaults(map[string]any{
			"server.timeout": "30s",
			"store.backend":  "file",
			"store.watch":    true,
		}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://env.example" {
		t.Errorf("BaseURL = %q, env should override file", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != "10s" {
		t.Errorf("Timeout = %q, file should override defaults", cfg.Server.Timeout)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Backend = %q", cfg.Store.Backend)
	}
	if !cfg.Store.Watch {
		t.Error("Watch default should survive")
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}

	// Flag overrides win over everything.
	if err := l.LoadMap(map[string]any{"server.base_url": "http://flag.example"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://flag.example" {
		t.Errorf("BaseURL = %q after flag override", cfg.Server.BaseURL)
	}
	if got := l.GetString("server.base_url"); got != "http://flag.example" {
		t.Errorf("GetString() = %q", got)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(missing)).Load(&cfg); err == nil {
		t.Error("Load() should fail for a missing required file")
	}

	l := NewLoader(WithOptionalConfigFile(missing), WithDefaults(map[string]any{"store.backend": "memory"}))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() with optional file error = %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Backend = %q", cfg.Store.Backend)
	}
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "server: [unterminated")
	var cfg testConfig
	if err := NewLoader(WithOptionalConfigFile(path)).Load(&cfg); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoader_KeysAndAll(t *testing.T) {
	l := NewLoader(WithEnvPrefix("SKTEST_NONE_"))
	if err := l.LoadMap(map[string]any{"a.b": 1, "c": "x"}); err != nil {
		t.Fatal(err)
	}
	if len(l.Keys()) != 2 {
		t.Errorf("Keys() = %v", l.Keys())
	}
	if l.All()["c"] != "x" {
		t.Errorf("All() = %v", l.All())
	}
	if l.Get("a.b") != 1 {
		t.Errorf("Get(a.b) = %v", l.Get("a.b"))
	}
}
