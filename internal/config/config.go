package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Automation AutomationConfig
	LM         LMConfig
	Messaging  MessagingConfig
	Encryption EncryptionConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret   string
	RefreshSecret  string
	AccessExpiry   time.Duration
	RefreshExpiry  time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// AutomationConfig holds scheduler-wide defaults for the automation gate
// and the scheduler loop's tick/batch sizing (spec §4.4, §4.7, §6).
type AutomationConfig struct {
	DefaultDailyLimit   int
	DefaultTimezone     string
	DefaultWorkingDays  int
	DefaultStartHour    int
	DefaultEndHour      int
	SchedulerTickPeriod time.Duration
	MaxBatchPerTick     int
}

// LMConfig holds the anthropic-sdk-go client configuration.
type LMConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// MessagingConfig holds outbound HTTP client defaults for the external
// professional-network messaging provider.
type MessagingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EncryptionConfig holds the key for the credential box that encrypts
// per-user messaging-provider API keys at rest.
type EncryptionConfig struct {
	CredentialKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "jobber"),
			Password:        getEnv("DB_PASSWORD", "jobber"),
			DBName:          getEnv("DB_NAME", "jobber"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:  getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:   getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry:  getEnvAsDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Automation: AutomationConfig{
			DefaultDailyLimit:   getEnvAsInt("AUTOMATION_DEFAULT_DAILY_LIMIT", 40),
			DefaultTimezone:     getEnv("AUTOMATION_DEFAULT_TIMEZONE", "Europe/Madrid"),
			DefaultWorkingDays:  getEnvAsInt("AUTOMATION_DEFAULT_WORKING_DAYS", 31),
			DefaultStartHour:    getEnvAsInt("AUTOMATION_DEFAULT_START_HOUR", 9),
			DefaultEndHour:      getEnvAsInt("AUTOMATION_DEFAULT_END_HOUR", 18),
			SchedulerTickPeriod: getEnvAsDuration("SCHEDULER_TICK_PERIOD", 30*time.Second),
			MaxBatchPerTick:     getEnvAsInt("SCHEDULER_MAX_BATCH_PER_TICK", 5),
		},
		LM: LMConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("LM_MODEL", "claude-3-5-sonnet-latest"),
			MaxTokens: getEnvAsInt("LM_MAX_TOKENS", 1024),
		},
		Messaging: MessagingConfig{
			BaseURL: getEnv("MESSAGING_BASE_URL", "https://api.unipile.com"),
			Timeout: getEnvAsDuration("MESSAGING_TIMEOUT", 30*time.Second),
		},
		Encryption: EncryptionConfig{
			CredentialKey: getEnv("CREDENTIAL_ENCRYPTION_KEY", ""),
		},
	}

	// Validate required fields
	if cfg.JWT.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if len(cfg.Encryption.CredentialKey) != 32 {
		return nil, fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be exactly 32 bytes")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
