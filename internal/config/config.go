package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Chain    ChainConfig
	Payments PaymentsConfig
	Worker   WorkerConfig
	DB       DatabaseConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

type ChainConfig struct {
	Enabled      bool
	BaseURL      string
	PollInterval time.Duration
}

type PaymentsConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenDuration: getEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour),
		},
		Chain: ChainConfig{
			Enabled:      getEnvBool("CHAIN_ENABLED", false),
			BaseURL:      getEnv("CHAIN_API_URL", "https://api.devnet.example-chain.org"),
			PollInterval: getEnvDuration("CHAIN_POLL_INTERVAL", 5*time.Minute),
		},
		Payments: PaymentsConfig{
			Enabled: getEnvBool("PAYMENTS_ENABLED", false),
			BaseURL: getEnv("PAYMENTS_API_URL", ""),
			APIKey:  getEnv("PAYMENTS_API_KEY", ""),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/reliefgrid.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenDuration < time.Minute {
		return fmt.Errorf("token duration must be at least 1 minute")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Chain.Enabled && c.Chain.PollInterval < time.Minute {
		return fmt.Errorf("chain poll interval must be at least 1 minute")
	}
	if c.Payments.Enabled && c.Payments.BaseURL == "" {
		return fmt.Errorf("PAYMENTS_API_URL is required when payments are enabled")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
