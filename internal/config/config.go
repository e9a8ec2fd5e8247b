package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/podiumreach/speaker-directory-go/internal/constants"
)

type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	Directory DirectoryConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	YouTube   YouTubeConfig
	AI        AIConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// SheetsConfig carries the external source credentials. Absence of both
// APIKey and CredentialsFile is not a validation error; the directory
// degrades to its fallback set instead.
type SheetsConfig struct {
	APIKey          string
	CredentialsFile string
	SpreadsheetID   string
	ReadRange       string
	FetchTimeout    time.Duration
}

type DirectoryConfig struct {
	TTL           time.Duration
	FeaturedLimit int
	EnrichVideos  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type YouTubeConfig struct {
	APIKey string
}

type AIConfig struct {
	GeminiAPIKey   string
	OpenAIAPIKey   string
	GeminiModel    string
	OpenAIModel    string
	EnableFallback bool
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Sheets: SheetsConfig{
			APIKey:          getEnv("GOOGLE_SHEETS_API_KEY", ""),
			CredentialsFile: getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", ""),
			SpreadsheetID:   getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
			ReadRange:       getEnv("GOOGLE_SHEETS_RANGE", constants.DirectoryConfig.DefaultReadRange),
			FetchTimeout:    time.Duration(getEnvInt("SHEETS_FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Directory: DirectoryConfig{
			TTL:           time.Duration(getEnvInt("DIRECTORY_TTL_SECONDS", 300)) * time.Second,
			FeaturedLimit: getEnvInt("DIRECTORY_FEATURED_LIMIT", constants.DirectoryConfig.DefaultFeaturedLimit),
			EnrichVideos:  getEnvBool("DIRECTORY_ENRICH_VIDEOS", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "directory"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "speaker_directory"),
		},
		YouTube: YouTubeConfig{
			APIKey: getEnv("YOUTUBE_API_KEY", ""),
		},
		AI: AIConfig{
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.Directory.TTL <= 0 {
		return fmt.Errorf("DIRECTORY_TTL_SECONDS must be positive")
	}
	if c.Directory.FeaturedLimit <= 0 {
		return fmt.Errorf("DIRECTORY_FEATURED_LIMIT must be positive")
	}
	if c.Sheets.SpreadsheetID != "" && c.Sheets.ReadRange == "" {
		return fmt.Errorf("GOOGLE_SHEETS_RANGE is required when a spreadsheet is configured")
	}
	return nil
}

// HasRedis reports whether a Redis snapshot store should be attempted.
func (c *Config) HasRedis() bool {
	return c.Redis.Host != ""
}

// HasPostgres reports whether the inquiry store should be attempted.
func (c *Config) HasPostgres() bool {
	return c.Postgres.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
