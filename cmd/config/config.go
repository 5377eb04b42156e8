package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

// Environment variables read after the config file.
const (
	EnvServerURL     = "WAKILI_SERVER_URL"
	EnvTimeout       = "WAKILI_TIMEOUT"
	EnvUploadTimeout = "WAKILI_UPLOAD_TIMEOUT"
	EnvLogFile       = "WAKILI_LOG_FILE"
	EnvGreeting      = "WAKILI_GREETING"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their file key, e.g. "server_url"
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("duration", validateDuration)
	_ = validate.RegisterValidation("httpurl", validateHTTPURL)
}

func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LoadOptions carries the inputs that outrank the config file.
type LoadOptions struct {
	// ConfigPath names a config file directly. Empty means search.
	ConfigPath string
	// Cwd is searched first for a config file and a .env file.
	Cwd string
	// DataDir is searched after Cwd.
	DataDir string
	// ServerURL comes from --server-url and wins over everything else.
	ServerURL string
}

// Load resolves the configuration: defaults, then the config file, then
// .env and WAKILI_* variables, then flags. It returns the config and the file
// it was read from ("" when none was found).
func Load(opts LoadOptions) (*Config, string, error) {
	cfg := Defaults()

	source := opts.ConfigPath
	if source == "" {
		for _, dir := range []string{opts.Cwd, opts.DataDir} {
			if dir == "" {
				continue
			}
			if found, err := FindConfigFile(dir); err == nil {
				source = found
				break
			}
		}
	}
	if source != "" {
		fileCfg, err := LoadConfigFile(source)
		if err != nil {
			return nil, "", err
		}
		cfg.merge(fileCfg)
	}

	if err := loadDotEnv(opts.Cwd); err != nil {
		return nil, "", err
	}
	cfg.merge(fromEnv())

	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

// loadDotEnv sets variables from dir/.env without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(dir string) error {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func fromEnv() *Config {
	return &Config{
		ServerURL:     os.Getenv(EnvServerURL),
		Timeout:       os.Getenv(EnvTimeout),
		UploadTimeout: os.Getenv(EnvUploadTimeout),
		LogFile:       os.Getenv(EnvLogFile),
		Greeting:      os.Getenv(EnvGreeting),
	}
}

// Validate checks cfg and names the first offending field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("invalid config: %s is required", field)
	case "duration":
		return fmt.Errorf("invalid config: %s must be a positive duration like 60s or 5m, got %q", field, fe.Value())
	case "httpurl":
		return fmt.Errorf("invalid config: %s must be an absolute http(s) URL, got %q", field, fe.Value())
	default:
		return fmt.Errorf("invalid config: %s failed %q", field, fe.Tag())
	}
}

// LoadConfigFile loads a specific config file
func LoadConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	fileExt := strings.ToLower(filepath.Ext(filePath))

	var config Config
	switch fileExt {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filePath, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %s: %w", filePath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", fileExt)
	}

	return &config, nil
}

// FindConfigFile searches for a config file (yaml/toml/json) in the specified directory
func FindConfigFile(searchPath string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("search path is required")
	}

	for _, configFile := range SupportedConfigFiles {
		fullPath := filepath.Join(searchPath, configFile)
		if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("no wakili config file (yaml/toml/json) found in %s", searchPath)
}
