package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Session SessionConfig
}

type AppConfig struct {
	Environment      string `validate:"required"`
	LogFilePath      string `validate:"required"`
	AuditLogFilePath string `validate:"required"`
	EventsTopic      string `validate:"required"`
}

type StorageConfig struct {
	// Driver selects the session repository backend.
	Driver     string `validate:"oneof=filesystem memory redis postgres"`
	BaseDir    string `validate:"required_if=Driver filesystem"`
	RedisURL   string `validate:"required_if=Driver redis"`
	Connection string `validate:"required_if=Driver postgres"`
}

type SessionConfig struct {
	// IdBytes is the number of random bytes per session id (2x hex chars on the wire).
	IdBytes       int           `validate:"min=8,max=64"`
	RetentionDays int           `validate:"min=1"`
	SweepInterval time.Duration `validate:"min=1m"`
}

// Retention is the maximum session age before the sweeper reclaims it.
func (c SessionConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment:      getEnv("GO_ENV", "development"),
			LogFilePath:      getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath: getEnv("AUDIT_LOG_FILE_PATH", "logs/session_audit.log"),
			EventsTopic:      getEnv("SESSION_EVENTS_TOPIC", "SESSION_LIFECYCLE"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "filesystem"),
			BaseDir:    getEnv("SESSION_BASE_DIR", filepath.Join(os.TempDir(), "archive-analyzer-sessions")),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			IdBytes:       getEnvAsInt("SESSION_ID_BYTES", 16),
			RetentionDays: getEnvAsInt("SESSION_RETENTION_DAYS", 30),
			SweepInterval: getEnvAsDuration("SWEEP_INTERVAL", 24*time.Hour),
		},
	}
}

// Validate rejects unusable configuration before anything touches storage.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
