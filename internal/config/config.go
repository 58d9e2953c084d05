package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error fatal"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// MaxBodyBytes caps request bodies, including study imports.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// LLMConfig configures category name suggestions. Without an API key the
// service falls back to naming clusters after their cards.
type LLMConfig struct {
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	ModelName    string        `mapstructure:"model_name"     validate:"required_with=GeminiAPIKey"`
	Timeout      time.Duration `mapstructure:"timeout"        validate:"gt=0"`
	MaxRetries   int           `mapstructure:"max_retries"    validate:"gte=0,lte=10"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"    validate:"gte=0"`
}

// AnalysisConfig holds the defaults applied when a request leaves an option
// unset.
type AnalysisConfig struct {
	DefaultSetSize      int    `mapstructure:"default_set_size"      validate:"gte=2"`
	DefaultLinkage      string `mapstructure:"default_linkage"       validate:"oneof=single complete average"`
	ReorderByDendrogram bool   `mapstructure:"reorder_by_dendrogram"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,required"`
}
