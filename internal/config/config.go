// Package config loads the console's settings from flags, environment
// variables (prefixed OCHOKO_) and an optional YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ochoko/admin/pkg/sakeapi"
)

// EnvPrefix prefixes every environment variable, e.g. OCHOKO_API_URL.
const EnvPrefix = "OCHOKO"

// DefaultAPIURL is the hosted sake API.
const DefaultAPIURL = sakeapi.DefaultBaseURL

// MinCookieSecret is the shortest accepted cookie secret, in bytes.
const MinCookieSecret = 32

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds the console and CLI settings.
type Config struct {
	Address         string        `mapstructure:"address"`
	APIURL          string        `mapstructure:"api_url"`
	Environment     string        `mapstructure:"environment"`
	LogLevel        string        `mapstructure:"log_level"`
	LogText         bool          `mapstructure:"log_text"`
	CookieSecret    string        `mapstructure:"cookie_secret"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	SessionMaxAge   int           `mapstructure:"session_max_age"`
	RedisURL        string        `mapstructure:"redis_url"`
	SentryDSN       string        `mapstructure:"sentry_dsn"`
	DefaultLanguage string        `mapstructure:"default_language"`
	PageSize        int           `mapstructure:"page_size"`
	UserCacheTTL    time.Duration `mapstructure:"user_cache_ttl"`
	MaxUpload       int64         `mapstructure:"max_upload"`
	StagingTTL      time.Duration `mapstructure:"staging_ttl"`
	LoginRate       float64       `mapstructure:"login_rate"`
	LoginBurst      int           `mapstructure:"login_burst"`
	TokenFile       string        `mapstructure:"token_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	S3              S3Config      `mapstructure:"s3"`
}

// S3Config points import staging at a bucket. An empty bucket keeps
// staged uploads in the cache.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

// Memory reports whether sessions and caches stay in process memory.
func (c Config) Memory() bool {
	return c.RedisURL == ""
}

// Production reports whether the console runs in production.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// ValidateClient checks what the command-line client needs.
func (c Config) ValidateClient() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%w: api_url is empty", ErrInvalid)
	}
	return nil
}

// Validate checks the settings the web console needs.
func (c Config) Validate() error {
	var errs []error
	if err := c.ValidateClient(); err != nil {
		errs = append(errs, err)
	}
	if len(c.CookieSecret) < MinCookieSecret {
		errs = append(errs, fmt.Errorf("%w: cookie_secret must be at least %d bytes", ErrInvalid, MinCookieSecret))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: page_size must be positive", ErrInvalid))
	}
	if c.MaxUpload <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_upload must be positive", ErrInvalid))
	}
	if c.S3.Bucket != "" && (c.S3.AccessKey == "" || c.S3.SecretKey == "") {
		errs = append(errs, fmt.Errorf("%w: s3.bucket needs s3.access_key and s3.secret_key", ErrInvalid))
	}
	return errors.Join(errs...)
}

// New returns a viper instance with defaults and environment bindings.
// Flags are bound onto it by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	// API_URL is the variable earlier deployments used.
	_ = v.BindEnv("api_url", EnvPrefix+"_API_URL", "API_URL")
	return v
}

func defaults() map[string]any {
	return map[string]any{
		"address":          ":8080",
		"api_url":          DefaultAPIURL,
		"environment":      "development",
		"log_level":        "info",
		"log_text":         false,
		"cookie_secret":    "",
		"cookie_secure":    false,
		"session_max_age":  7 * 24 * 60 * 60,
		"redis_url":        "",
		"sentry_dsn":       "",
		"default_language": "ja",
		"page_size":        100,
		"user_cache_ttl":   30 * time.Second,
		"max_upload":       10 << 20,
		"staging_ttl":      30 * time.Minute,
		"login_rate":       0.2,
		"login_burst":      5,
		"token_file":       defaultTokenFile(),
		"shutdown_timeout": 10 * time.Second,
		"s3.bucket":        "",
		"s3.access_key":    "",
		"s3.secret_key":    "",
		"s3.endpoint":      "",
		"s3.region":        "",
		"s3.prefix":        "ochoko/imports",
		"s3.path_style":    false,
	}
}

// defaultTokenFile is $XDG_CONFIG_HOME/ochoko/credentials.json, or a file
// in the working directory when no config directory is known.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ochoko-credentials.json"
	}
	return filepath.Join(dir, "ochoko", "credentials.json")
}

// Load reads file, when given, and decodes the merged settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	return cfg, nil
}
