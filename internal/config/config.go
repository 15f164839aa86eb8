// Package config loads the pathwae-dash configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. a YAML file (--config)
//  3. a .env file in the working directory
//  4. the process environment (PATHWAE_*)
//
// Command line flags are applied on top by the CLI itself.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pathwae/dashboard"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL      = "PATHWAE_API_URL"
	EnvExport      = "PATHWAE_EXPORT"
	EnvCompression = "PATHWAE_COMPRESSION"
	EnvS3Region    = "PATHWAE_S3_REGION"
	EnvS3Endpoint  = "PATHWAE_S3_ENDPOINT"
	EnvTimeout     = "PATHWAE_TIMEOUT"
	EnvConcurrency = "PATHWAE_CONCURRENCY"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Config is the CLI configuration.
type Config struct {
	// APIURL is the proxy API root, e.g. http://localhost:8080/api/v1.
	APIURL string `yaml:"api_url"`

	UserAgent string `yaml:"user_agent,omitempty"`

	// Timeout bounds each API request. Event streams are not bounded.
	// Zero means no timeout.
	Timeout Duration `yaml:"timeout,omitempty"`

	// Concurrency bounds parallel backend queries during a snapshot.
	Concurrency int `yaml:"concurrency,omitempty"`

	Export Export `yaml:"export"`
}

// Export configures where snapshots are written.
type Export struct {
	// Destination is a directory, file://, s3://bucket/prefix,
	// gs://bucket/prefix or mem://.
	Destination string `yaml:"destination"`

	// Compression is "zstd", "gzip" or "none".
	Compression string `yaml:"compression"`

	S3Region   string `yaml:"s3_region,omitempty"`
	S3Endpoint string `yaml:"s3_endpoint,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:      dashboard.DefaultBaseURL,
		UserAgent:   "pathwae-dash",
		Concurrency: 8,
		Export: Export{
			Destination: "snapshots",
			Compression: "zstd",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), then the
// .env file and the process environment. Overrides run last, before the
// result is validated.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		expanded := expandPath(path)
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", expanded, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", expanded, err)
		}
	}

	env, err := Environ(DefaultEnvFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// The environment is not consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Environ returns the PATHWAE_* variables from the dotenv file, when it
// exists, overlaid with the process environment.
func Environ(dotenv string) (map[string]string, error) {
	env := make(map[string]string)

	if dotenv != "" {
		vars, err := godotenv.Read(dotenv)
		switch {
		case err == nil:
			for k, v := range vars {
				if strings.HasPrefix(k, "PATHWAE_") {
					env[k] = v
				}
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", dotenv, err)
		}
	}

	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, "PATHWAE_") {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides fields from env. Empty values are ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	set := func(key string, dst *string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(EnvAPIURL, &c.APIURL)
	set(EnvExport, &c.Export.Destination)
	set(EnvCompression, &c.Export.Compression)
	set(EnvS3Region, &c.Export.S3Region)
	set(EnvS3Endpoint, &c.Export.S3Endpoint)

	if v := env[EnvTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = Duration(d)
	}
	if v := env[EnvConcurrency]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate checks the configuration for values the client would reject.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("api_url: missing host")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch strings.ToLower(c.Export.Compression) {
	case "", "zstd", "gzip", "gz", "none":
	default:
		return fmt.Errorf("export.compression: unknown codec %q", c.Export.Compression)
	}
	return nil
}

// expandPath resolves a leading ~ and environment variables in path.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
