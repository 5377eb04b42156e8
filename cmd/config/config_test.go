package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every WAKILI_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvServerURL, EnvTimeout, EnvUploadTimeout, EnvLogFile, EnvGreeting} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, source, err := Load(LoadOptions{Cwd: t.TempDir(), DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if source != "" {
		t.Errorf("expected no config file, got %q", source)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if cfg.RequestTimeout() != 60*time.Second || cfg.UploadRequestTimeout() != 5*time.Minute {
		t.Errorf("unexpected timeouts %v / %v", cfg.RequestTimeout(), cfg.UploadRequestTimeout())
	}
	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("WatchDebounce = %v", cfg.WatchDebounce())
	}
	if cfg.Greeting != DefaultGreeting {
		t.Errorf("Greeting = %q", cfg.Greeting)
	}
}

func TestLoadConfigFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "wakili.yaml",
			content: `server_url: http://law.example.com:9000
timeout: 90s
watch:
  dir: ./inbox
  debounce: 1s
`,
		},
		{
			name: "toml",
			file: "wakili.toml",
			content: `server_url = "http://law.example.com:9000"
timeout = "90s"

[watch]
dir = "./inbox"
debounce = "1s"
`,
		},
		{
			name:    "json",
			file:    "wakili.json",
			content: `{"server_url":"http://law.example.com:9000","timeout":"90s","watch":{"dir":"./inbox","debounce":"1s"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, source, err := Load(LoadOptions{Cwd: dir})
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if source != path {
				t.Errorf("source = %q, want %q", source, path)
			}
			if cfg.ServerURL != "http://law.example.com:9000" {
				t.Errorf("ServerURL = %q", cfg.ServerURL)
			}
			if cfg.RequestTimeout() != 90*time.Second {
				t.Errorf("RequestTimeout = %v", cfg.RequestTimeout())
			}
			if cfg.UploadTimeout != DefaultUploadTimeout {
				t.Errorf("UploadTimeout should keep its default, got %q", cfg.UploadTimeout)
			}
			if cfg.Watch.Dir != "./inbox" || cfg.WatchDebounce() != time.Second {
				t.Errorf("Watch = %+v", cfg.Watch)
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	clearEnv(t)
	cwd, data := t.TempDir(), t.TempDir()
	writeFile(t, data, "wakili.yaml", "server_url: http://data-dir:1\n")

	cfg, _, err := Load(LoadOptions{Cwd: cwd, DataDir: data})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://data-dir:1" {
		t.Errorf("expected data dir config, got %q", cfg.ServerURL)
	}

	// The working directory wins over the data directory, yaml over json.
	writeFile(t, cwd, "wakili.json", `{"server_url":"http://cwd-json:1"}`)
	writeFile(t, cwd, "wakili.yaml", "server_url: http://cwd-yaml:1\n")
	cfg, _, err = Load(LoadOptions{Cwd: cwd, DataDir: data})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://cwd-yaml:1" {
		t.Errorf("expected cwd yaml config, got %q", cfg.ServerURL)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "wakili.yaml", "server_url: http://from-file:1\ntimeout: 10s\ngreeting: Karibu\n")
	writeFile(t, dir, ".env", "WAKILI_SERVER_URL=http://from-dotenv:2\nWAKILI_UPLOAD_TIMEOUT=2m\n")

	cfg, _, err := Load(LoadOptions{Cwd: dir})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://from-dotenv:2" {
		t.Errorf(".env should override the file, got %q", cfg.ServerURL)
	}
	if cfg.UploadRequestTimeout() != 2*time.Minute {
		t.Errorf("UploadRequestTimeout = %v", cfg.UploadRequestTimeout())
	}
	if cfg.Greeting != "Karibu" {
		t.Errorf("Greeting = %q", cfg.Greeting)
	}

	// A real environment variable beats .env, and the flag beats both.
	t.Setenv(EnvServerURL, "http://from-env:3")
	cfg, _, err = Load(LoadOptions{Cwd: dir})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://from-env:3" {
		t.Errorf("env should override .env, got %q", cfg.ServerURL)
	}

	cfg, _, err = Load(LoadOptions{Cwd: dir, ServerURL: "http://from-flag:4"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://from-flag:4" {
		t.Errorf("flag should win, got %q", cfg.ServerURL)
	}
}

func TestLoadExplicitConfigPath(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "custom.yml", "server_url: https://law.example.com/api\n")
	cfg, source, err := Load(LoadOptions{ConfigPath: path, Cwd: t.TempDir()})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if source != path || cfg.ServerURL != "https://law.example.com/api" {
		t.Errorf("got %q from %q", cfg.ServerURL, source)
	}

	if _, _, err := Load(LoadOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Errorf("expected error for a missing explicit config")
	}
}

func TestValidationNamesField(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"relative url", "server_url: localhost:8000\n", "server_url"},
		{"ftp url", "server_url: ftp://example.com\n", "server_url"},
		{"bad timeout", "timeout: soon\n", "timeout"},
		{"negative upload timeout", "upload_timeout: -5s\n", "upload_timeout"},
		{"bad debounce", "watch:\n  debounce: fast\n", "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeFile(t, dir, "wakili.yaml", tt.content)
			_, _, err := Load(LoadOptions{Cwd: dir})
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfigFile(writeFile(t, dir, "wakili.ini", "x=1")); err == nil {
		t.Errorf("expected unsupported extension error")
	}
	if _, err := LoadConfigFile(writeFile(t, dir, "wakili.yaml", "server_url: [unclosed")); err == nil {
		t.Errorf("expected YAML parse error")
	}
	if _, err := FindConfigFile(""); err == nil {
		t.Errorf("expected error for empty search path")
	}
}
