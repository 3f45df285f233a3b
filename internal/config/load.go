package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "DOCSYNC"
	EnvAPIKey      = "GEMINI_API_KEY"
	configFileName = "config"
)

// Load reads configuration into a Config. configPath selects an explicit
// file; when empty the default locations are searched and a missing file is
// not an error. Flags must be bound to v before calling Load.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(DefaultConfigDir)
		v.SetConfigName(configFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || (!errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", EnvAPIKey); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	cfg.Path = v.ConfigFileUsed()
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("store", "")
	v.SetDefault("backend", def.Backend)
	v.SetDefault("extensions", []string{})
	v.SetDefault("ignore", []string{})
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("verbose", false)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model", def.Gemini.Model)
	v.SetDefault("gemini.timeout", def.Gemini.Timeout)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	v.SetDefault("sync.concurrency", def.Sync.Concurrency)
	v.SetDefault("sync.max_attempts", def.Sync.MaxAttempts)
	v.SetDefault("sync.base_delay", def.Sync.BaseDelay)
	v.SetDefault("sync.poll_interval", def.Sync.PollInterval)
	v.SetDefault("sync.poll_timeout", def.Sync.PollTimeout)
	v.SetDefault("sync.quiet_period", def.Sync.QuietPeriod)
}
