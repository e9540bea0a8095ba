package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campusd/professor-trust/pkg/utils"
	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Config

	issuer              = "professor-trust-auth"     // Default issuer name embedded in tokens
	tokenTTL            = "1h"                       // Default access token lifetime
	authListenAddr      = ":5001"                    // Default auth service listen address
	professorListenAddr = ":5002"                    // Default professor service listen address
	databaseDSN         = "professors.db"            // Default SQLite database path
	cacheType           = "memory"                   // Default cache type
	cacheTTL            = "1h"                       // Default cache TTL
	cacheMaxLocalSize   = 10                         // Default max local size for memory cache
	professorBaseURL    = "http://localhost:5002"    // Default professor service base URL
	jwksURL             = "http://localhost:5001/.well-known/jwks.json"
)

// Cache holds the JWKS cache configuration shared by every verifier that is
// remote from the issuer.
type Cache struct {
	Type          string        `mapstructure:"type"`           // Cache type ("memory" or "redis")
	TTL           time.Duration `mapstructure:"ttl"`            // Cache TTL duration (ex: "5m", "1h", "24h")
	MaxLocalSize  int           `mapstructure:"max_local_size"` // Maximum size of local cache (if using memory cache)
	RedisAddr     string        `mapstructure:"redis_addr"`     // Redis address (if using redis cache)
	RedisPassword string        `mapstructure:"redis_password"` // Redis password (if using redis cache)
	RedisDB       int           `mapstructure:"redis_db"`       // Redis database number (if using redis cache)
}

type Config struct {
	Issuer              string        `mapstructure:"issuer"`                // Issuer is the iss claim stamped into every token
	TokenTTL            time.Duration `mapstructure:"token_ttl"`             // TokenTTL is the access token lifetime
	PrivateKeyPath      string        `mapstructure:"private_key_path"`      // PrivateKeyPath is the PEM file holding the RSA signing key
	KeyID               string        `mapstructure:"key_id"`                // KeyID overrides the derived kid (optional)
	AuthListenAddr      string        `mapstructure:"auth_listen_addr"`      // AuthListenAddr is the auth service bind address
	ProfessorListenAddr string        `mapstructure:"professor_listen_addr"` // ProfessorListenAddr is the professor service bind address
	ProfessorBaseURL    string        `mapstructure:"professor_base_url"`    // ProfessorBaseURL is where the auth service reaches the professor service
	JWKSURL             string        `mapstructure:"jwks_url"`              // JWKSURL is where the professor service fetches verification keys
	DatabaseDSN         string        `mapstructure:"database_dsn"`          // DatabaseDSN is the SQLite data source name
	LogLevel            string        `mapstructure:"log_level"`             // LogLevel is the slog level (debug, info, warn, error)
	Cache               *Cache        `mapstructure:"cache"`                 // Cache is the JWKS cache configuration
}

// NewConfig initializes and returns the configuration. It ensures that the config is loaded only once.
func NewConfig() (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		err = instance.LoadConfig()
	})
	return instance, err
}

// LoadConfig attempts to load configuration from a file or uses default values if not found.
func (c *Config) LoadConfig() error {
	configName := utils.GetEnv("CONFIG_NAME", "config") // Configuration file name without extension
	configPath := utils.GetEnv("CONFIG_PATH", ".")      // Configuration file path, default to current directory

	// Set environment variable handling first
	viper.SetEnvPrefix("pt") // Set the environment variable prefix ex: "PT_"
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("/etc/professor-trust/")
	viper.AddConfigPath(configPath)
	viper.SetConfigName(configName)

	// Set default values
	viper.SetDefault("issuer", issuer)
	viper.SetDefault("token_ttl", tokenTTL)
	viper.SetDefault("auth_listen_addr", authListenAddr)
	viper.SetDefault("professor_listen_addr", professorListenAddr)
	viper.SetDefault("professor_base_url", professorBaseURL)
	viper.SetDefault("jwks_url", jwksURL)
	viper.SetDefault("database_dsn", databaseDSN)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("cache.type", cacheType)
	viper.SetDefault("cache.ttl", cacheTTL)
	viper.SetDefault("cache.max_local_size", cacheMaxLocalSize)

	// Explicitly bind all config keys to environment variables
	// Core settings
	_ = viper.BindEnv("issuer")                // PT_ISSUER
	_ = viper.BindEnv("token_ttl")             // PT_TOKEN_TTL
	_ = viper.BindEnv("private_key_path")      // PT_PRIVATE_KEY_PATH
	_ = viper.BindEnv("key_id")                // PT_KEY_ID
	_ = viper.BindEnv("auth_listen_addr")      // PT_AUTH_LISTEN_ADDR
	_ = viper.BindEnv("professor_listen_addr") // PT_PROFESSOR_LISTEN_ADDR
	_ = viper.BindEnv("professor_base_url")    // PT_PROFESSOR_BASE_URL
	_ = viper.BindEnv("jwks_url")              // PT_JWKS_URL
	_ = viper.BindEnv("database_dsn")          // PT_DATABASE_DSN
	_ = viper.BindEnv("log_level")             // PT_LOG_LEVEL

	// Cache settings
	_ = viper.BindEnv("cache.type")           // PT_CACHE_TYPE
	_ = viper.BindEnv("cache.ttl")            // PT_CACHE_TTL
	_ = viper.BindEnv("cache.max_local_size") // PT_CACHE_MAX_LOCAL_SIZE
	_ = viper.BindEnv("cache.redis_addr")     // PT_CACHE_REDIS_ADDR
	_ = viper.BindEnv("cache.redis_password") // PT_CACHE_REDIS_PASSWORD
	_ = viper.BindEnv("cache.redis_db")       // PT_CACHE_REDIS_DB

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; rely on defaults
		} else {
			return fmt.Errorf("problem reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return c.Validate()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Issuer == "" {
		return errors.New("issuer is required")
	}

	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}

	if c.JWKSURL == "" {
		return errors.New("jwks url is required")
	}

	if c.Cache != nil {
		switch c.Cache.Type {
		case "", "memory":
			// Defaults are fine.
		case "redis":
			if c.Cache.RedisAddr == "" {
				return errors.New("redis address is required for redis cache")
			}
		default:
			return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
		}
	}

	return nil
}
