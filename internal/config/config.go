package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"inmo-backoffice/internal/email"
)

type GoogleConfig struct {
	// OAuth client credentials. Both must be set for the calendar
	// integration; when either is missing, token refresh is disabled and
	// sync degrades to "not connected".
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// Redirect URL registered for the OAuth consent flow, e.g.
	// https://example.com/auth/google/callback
	RedirectURL string `mapstructure:"redirect_url"`
}

type Config struct {
	// Secret key for signing session tokens. Must be set in production.
	Secret string `mapstructure:"secret"`
	// Session TTL in hours.
	SessionTTL uint   `mapstructure:"session_ttl"`
	LogLevel   string `mapstructure:"log_level"`
	Listen     string `mapstructure:"listen"`

	// Public base URL of the service. Used for OAuth redirects and the
	// property listing QR codes.
	BaseURL string `mapstructure:"base_url"`

	// IANA time zone used for every calendar timestamp sent to the
	// provider. Threaded explicitly; nothing reads the process zone.
	TimeZone string `mapstructure:"time_zone"`

	NonceStore string `mapstructure:"nonce_store"`

	Google GoogleConfig `mapstructure:"google"`

	Storage Storage `mapstructure:"storage"`

	// Visit confirmation email settings.
	Email email.SMTPConfig `mapstructure:"email"`
}

var Cfg *Config

// LoadConfig reads configuration from environment variables and an optional
// config file, returning a populated Config.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath("./instance")
	v.AddConfigPath(".")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	// Config file is optional; env vars alone are a valid setup.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("unable to read config file: %v", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("SECRET configuration variable is required in production")
		}
		slog.Warn("Secret is not set. Do not use in production.")
	}

	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		slog.Warn("Google client credentials not set, calendar integration disabled")
	}

	Cfg = &cfg
	return &cfg, nil
}
