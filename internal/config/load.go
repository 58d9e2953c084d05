package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the service reads, e.g.
// CARDSORT_SERVER_PORT or CARDSORT_DATABASE_URL.
const EnvPrefix = "CARDSORT"

var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.shutdown_timeout": 10 * time.Second,
	"server.max_body_bytes":   5 << 20,

	"database.url":               "",
	"database.max_open_conns":    25,
	"database.max_idle_conns":    25,
	"database.conn_max_lifetime": 5 * time.Minute,

	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 60,
	"auth.bcrypt_cost":            10,

	"llm.gemini_api_key": "",
	"llm.model_name":     "gemini-2.0-flash",
	"llm.timeout":        30 * time.Second,
	"llm.max_retries":    2,
	"llm.retry_delay":    time.Second,

	"analysis.default_set_size":      24,
	"analysis.default_linkage":       "average",
	"analysis.reorder_by_dendrogram": true,

	"cors.allowed_origins": []string{"*"},
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit config file instead of ./config.yaml.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	// Registering every key is what lets Unmarshal see environment
	// variables for keys absent from the config file.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
