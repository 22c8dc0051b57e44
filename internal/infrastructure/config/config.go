// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Default destination allow-list: Philippine airports
var defaultAllowedAirports = []string{
	"MNL", "CEB", "CRK", "KLO", "MPH", "TAG", "PPS", "DVO", "ILO", "BCD", "USU", "CGY", "ZAM", "TAC", "LGP", "GES",
}

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion       string
	LogLevel         string
	MetricsNamespace string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Storage
	StoreBackend  string
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string
	PostgresURI   string

	// Flight data API
	FlightAPIBaseURL string
	FlightAPIKey     string
	FlightAPIHost    string
	FlightAPITimeout time.Duration

	// Ingestion
	ChunkSize       time.Duration
	ChunkDelay      time.Duration
	MaxBatchSize    int
	MaxRangeDays    int
	DefaultTimezone string
	AllowedAirports []string

	// Query cache
	CacheTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:       getEnv("APP_VERSION", "1.0.0"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "flightsched"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flightsched"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),
		PostgresURI:   getEnv("POSTGRES_DSN", ""),

		FlightAPIBaseURL: getEnv("FLIGHT_API_BASE_URL", "https://aerodatabox.p.rapidapi.com"),
		FlightAPIKey:     getEnv("FLIGHT_API_KEY", ""),
		FlightAPIHost:    getEnv("FLIGHT_API_HOST", "aerodatabox.p.rapidapi.com"),
		FlightAPITimeout: time.Duration(getEnvAsInt("FLIGHT_API_TIMEOUT", 30)) * time.Second,

		ChunkSize:       time.Duration(getEnvAsInt("CHUNK_HOURS", 12)) * time.Hour,
		ChunkDelay:      time.Duration(getEnvAsInt("CHUNK_DELAY_MS", 1500)) * time.Millisecond,
		MaxBatchSize:    getEnvAsInt("MAX_BATCH_SIZE", 500),
		MaxRangeDays:    getEnvAsInt("MAX_RANGE_DAYS", 31),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "Asia/Seoul"),
		AllowedAirports: getEnvAsList("ALLOWED_AIRPORTS", defaultAllowedAirports),

		CacheTTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values the pipeline depends on
func (c *Config) Validate() error {
	if c.StoreBackend != StoreMongo && c.StoreBackend != StoreMemory {
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}
	// 500 is the write ceiling of one atomic batch
	if c.MaxBatchSize < 1 || c.MaxBatchSize > 500 {
		return fmt.Errorf("MAX_BATCH_SIZE must be between 1 and 500, got %d", c.MaxBatchSize)
	}
	if c.ChunkSize < time.Hour || c.ChunkSize > 12*time.Hour {
		return fmt.Errorf("CHUNK_HOURS must be between 1 and 12, got %s", c.ChunkSize)
	}
	if c.ChunkDelay < 0 {
		return fmt.Errorf("CHUNK_DELAY_MS must not be negative")
	}
	if c.MaxRangeDays < 1 {
		return fmt.Errorf("MAX_RANGE_DAYS must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	if len(c.AllowedAirports) == 0 {
		return fmt.Errorf("ALLOWED_AIRPORTS must not be empty")
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
