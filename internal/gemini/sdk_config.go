package gemini

import (
	"errors"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 5 * time.Minute
)

var ErrNoAPIKey = errors.New("gemini: api key missing")

// Config is the configuration for the SDK
type Config struct {
	BaseURL string        // BaseURL defaults to DefaultBaseURL
	APIKey  string        // APIKey is required
	Model   string        // Model used by ModelsAPI.GenerateContent
	Timeout time.Duration // per-request timeout
}

// Validate fills defaults and checks required fields.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
