package config

import (
	"time"
)

// Config file names, searched in this order
var SupportedConfigFiles = []string{
	"wakili.yaml",
	"wakili.yml",
	"wakili.toml",
	"wakili.json",
}

// Defaults applied before any file, environment or flag.
const (
	DefaultServerURL     = "http://localhost:8000"
	DefaultTimeout       = "60s"
	DefaultUploadTimeout = "5m"
	DefaultWatchDebounce = "500ms"
	DefaultGreeting      = "Habari! I'm your legal assistant. Ask me about Kenyan law or request a document draft."
)

// Config is the client configuration. Durations are kept as strings so every
// file format spells them the same way ("90s", "5m").
type Config struct {
	ServerURL     string      `yaml:"server_url" toml:"server_url" json:"server_url" validate:"required,httpurl"`
	Timeout       string      `yaml:"timeout" toml:"timeout" json:"timeout" validate:"required,duration"`
	UploadTimeout string      `yaml:"upload_timeout" toml:"upload_timeout" json:"upload_timeout" validate:"required,duration"`
	Greeting      string      `yaml:"greeting,omitempty" toml:"greeting,omitempty" json:"greeting,omitempty"`
	LogFile       string      `yaml:"log_file,omitempty" toml:"log_file,omitempty" json:"log_file,omitempty"`
	Watch         WatchConfig `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty"`
}

// WatchConfig configures the upload watch folder.
type WatchConfig struct {
	Dir      string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"`
	Debounce string `yaml:"debounce,omitempty" toml:"debounce,omitempty" json:"debounce,omitempty" validate:"omitempty,duration"`
}

// Defaults returns a config holding only the built-in defaults.
func Defaults() *Config {
	return &Config{
		ServerURL:     DefaultServerURL,
		Timeout:       DefaultTimeout,
		UploadTimeout: DefaultUploadTimeout,
		Greeting:      DefaultGreeting,
		Watch:         WatchConfig{Debounce: DefaultWatchDebounce},
	}
}

// RequestTimeout is the limit for chat, draft, ingest and settings calls.
func (c *Config) RequestTimeout() time.Duration {
	return parseOr(c.Timeout, 60*time.Second)
}

// UploadRequestTimeout is the limit for a document upload.
func (c *Config) UploadRequestTimeout() time.Duration {
	return parseOr(c.UploadTimeout, 5*time.Minute)
}

// WatchDebounce is the quiet period before a watched file is uploaded.
func (c *Config) WatchDebounce() time.Duration {
	return parseOr(c.Watch.Debounce, 500*time.Millisecond)
}

func parseOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// merge copies every non-empty field of o over c.
func (c *Config) merge(o *Config) {
	if o == nil {
		return
	}
	if o.ServerURL != "" {
		c.ServerURL = o.ServerURL
	}
	if o.Timeout != "" {
		c.Timeout = o.Timeout
	}
	if o.UploadTimeout != "" {
		c.UploadTimeout = o.UploadTimeout
	}
	if o.Greeting != "" {
		c.Greeting = o.Greeting
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.Watch.Dir != "" {
		c.Watch.Dir = o.Watch.Dir
	}
	if o.Watch.Debounce != "" {
		c.Watch.Debounce = o.Watch.Debounce
	}
}
