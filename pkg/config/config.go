// Package config loads storefront client configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment override keys.
const (
	EnvAPIURL         = "STOREFRONT_API_URL"
	EnvAPITimeout     = "STOREFRONT_API_TIMEOUT"
	EnvStorageDir     = "STOREFRONT_STORAGE_DIR"
	EnvGoogleClientID = "STOREFRONT_GOOGLE_CLIENT_ID"
	EnvOTLPEndpoint   = "STOREFRONT_OTLP_ENDPOINT"
)

const (
	defaultBaseURL = "http://localhost:8000/api"
	defaultTimeout = 30 * time.Second
)

// Duration wraps time.Duration so YAML values like "30s" decode naturally.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the full client configuration.
type Config struct {
	API struct {
		BaseURL string   `yaml:"base_url"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"api"`
	Storage struct {
		Dir string `yaml:"dir"`
	} `yaml:"storage"`
	Google struct {
		ClientID string `yaml:"client_id"`
	} `yaml:"google"`
	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"telemetry"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.API.BaseURL = defaultBaseURL
	cfg.API.Timeout = Duration(defaultTimeout)
	if home, err := os.UserHomeDir(); err == nil {
		cfg.Storage.Dir = filepath.Join(home, ".storefront")
	} else {
		cfg.Storage.Dir = ".storefront"
	}
	return cfg
}

// Load reads path, merges it over the defaults and applies environment
// overrides. A missing file is not an error; defaults plus environment
// apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getEnv(EnvAPIURL, ""); v != "" {
		c.API.BaseURL = v
	}
	if v := getEnv(EnvAPITimeout, ""); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			c.API.Timeout = Duration(parsed)
		}
	}
	if v := getEnv(EnvStorageDir, ""); v != "" {
		c.Storage.Dir = v
	}
	if v := getEnv(EnvGoogleClientID, ""); v != "" {
		c.Google.ClientID = v
	}
	if v := getEnv(EnvOTLPEndpoint, ""); v != "" {
		c.Telemetry.OTLPEndpoint = v
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = Duration(defaultTimeout)
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return fmt.Errorf("config: storage.dir is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
