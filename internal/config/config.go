// Package config holds docsync settings. Values come from, in increasing
// precedence: defaults, a config file, DOCSYNC_* environment variables and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendGemini = "gemini"
	BackendS3     = "s3"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigDir   = filepath.Join(home, ".config", "docsync")
	DefaultLogFilePath = filepath.Join(home, ".docsync", "logs", "docsync.log")
)

var (
	ErrNoAPIKey       = errors.New("GEMINI_API_KEY is not set")
	ErrNoBucket       = errors.New("s3 bucket is not set")
	ErrNoStore        = errors.New("store label is empty")
	ErrUnknownBackend = errors.New("unknown backend")
)

type Config struct {
	Path       string       `mapstructure:"-"`
	Store      string       `mapstructure:"store"`
	Backend    string       `mapstructure:"backend"`
	Extensions []string     `mapstructure:"extensions"` // empty uses the built-in list
	Ignore     []string     `mapstructure:"ignore"`     // extra gitignore rules
	LogFile    string       `mapstructure:"log_file"`
	Verbose    bool         `mapstructure:"verbose"`
	Gemini     GeminiConfig `mapstructure:"gemini"`
	S3         S3Config     `mapstructure:"s3"`
	Sync       SyncConfig   `mapstructure:"sync"`
}

type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type SyncConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	QuietPeriod  time.Duration `mapstructure:"quiet_period"` // --watch debounce
}

// Default returns a Config with every default filled in except Store, which
// depends on the working directory.
func Default() *Config {
	return &Config{
		Backend: BackendGemini,
		LogFile: DefaultLogFilePath,
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 5 * time.Minute,
		},
		Sync: SyncConfig{
			Concurrency:  5,
			MaxAttempts:  3,
			BaseDelay:    time.Second,
			PollInterval: 2 * time.Second,
			PollTimeout:  10 * time.Minute,
			QuietPeriod:  2 * time.Second,
		},
	}
}

// Validate normalizes c, fills zero values with defaults and checks that the
// selected backend has its credentials.
func (c *Config) Validate() error {
	def := Default()

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = def.Backend
	}

	if err := c.resolveStore(); err != nil {
		return err
	}

	switch c.Backend {
	case BackendGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return ErrNoAPIKey
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return ErrNoBucket
		}
	default:
		return fmt.Errorf("%w %q (want %s or %s)", ErrUnknownBackend, c.Backend, BackendGemini, BackendS3)
	}

	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = def.Gemini.Model
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = def.Gemini.Timeout
	}

	s := &c.Sync
	if s.Concurrency < 1 {
		s.Concurrency = def.Sync.Concurrency
	}
	if s.MaxAttempts < 1 {
		s.MaxAttempts = def.Sync.MaxAttempts
	}
	if s.BaseDelay <= 0 {
		s.BaseDelay = def.Sync.BaseDelay
	}
	if s.PollInterval <= 0 {
		s.PollInterval = def.Sync.PollInterval
	}
	if s.PollTimeout <= 0 {
		s.PollTimeout = def.Sync.PollTimeout
	}
	if s.QuietPeriod <= 0 {
		s.QuietPeriod = def.Sync.QuietPeriod
	}
	if s.PollTimeout < s.PollInterval {
		return fmt.Errorf("sync `poll_timeout` (%s) must not be shorter than `poll_interval` (%s)", s.PollTimeout, s.PollInterval)
	}

	return nil
}

// resolveStore defaults the store label to the working directory name.
func (c *Config) resolveStore() error {
	c.Store = strings.TrimSpace(c.Store)
	if c.Store == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve store label: %w", err)
		}
		c.Store = filepath.Base(wd)
	}
	if c.Store == "" || c.Store == "." || c.Store == string(filepath.Separator) {
		return ErrNoStore
	}
	return nil
}
