// Package config loads and validates Flower Resume configuration from
// defaults, an optional flower.yaml, and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration.
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`
	DatabaseURL string          `mapstructure:"database_url"`
	RedisURL    string          `mapstructure:"redis_url"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	Password    PasswordConfig  `mapstructure:"password"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Storage     StorageConfig   `mapstructure:"storage"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Log         LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// LLMConfig selects the chat-completion provider and its models.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"`
	GeminiAPIKey  string        `mapstructure:"gemini_api_key"`
	OpenAIAPIKey  string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	ModelLite     string        `mapstructure:"model_lite"`
	ModelStandard string        `mapstructure:"model_standard"`
	ModelAdvanced string        `mapstructure:"model_advanced"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// APIKey returns the key for the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// StorageConfig points at an S3-compatible bucket for uploaded images.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	UsePathStyle  bool   `mapstructure:"path_style"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb"`
}

// Enabled reports whether uploads can be served.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// RateLimitConfig holds the global rate limit settings.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envAliases maps config keys to environment names that don't follow the
// SECTION_KEY convention.
var envAliases = map[string]string{
	"server.port":                 "PORT",
	"password.bcrypt_cost":        "BCRYPT_COST",
	"llm.gemini_api_key":          "GEMINI_API_KEY",
	"llm.openai_api_key":          "OPENAI_API_KEY",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)

	v.SetDefault("password.bcrypt_cost", 12)
	v.SetDefault("password.pepper", "")

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.model_lite", "")
	v.SetDefault("llm.model_standard", "")
	v.SetDefault("llm.model_advanced", "")
	v.SetDefault("llm.max_attempts", 2)
	v.SetDefault("llm.timeout", 90*time.Second)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.path_style", false)
	v.SetDefault("storage.max_upload_mb", 5)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. An explicit path must exist; otherwise
// ./flower.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("flower")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings every command needs. Secrets that only the
// server needs are checked by ValidateServe.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Server.Port)
	}
	return nil
}

// ValidateServe checks everything the API server needs to start.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.JWT.normalize(); err != nil {
		return err
	}
	if err := c.Password.normalize(); err != nil {
		return err
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("config error: unknown LLM provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey() == "" {
		return fmt.Errorf("config error: API key for LLM provider %q is required", c.LLM.Provider)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("config error: llm.max_attempts must be at least 1")
	}
	if c.Storage.Enabled() && c.Storage.PublicBaseURL == "" && c.Storage.Endpoint == "" {
		return fmt.Errorf("config error: storage needs STORAGE_PUBLIC_BASE_URL or STORAGE_ENDPOINT to build image URLs")
	}
	return nil
}
