package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	LogLevel    string
	ServerPort  int

	PublicDir     string
	DataDir       string
	StorageDriver string // file or postgres
	DatabaseURL   string
	RedisURL      string

	JWTSecret string
	TokenTTL  time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	WeatherAPIKey string

	WeatherCacheTTL time.Duration
	UpstreamTimeout time.Duration

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load reads configuration from the environment, after sourcing an optional
// .env file. Missing upstream keys are not an error here: the proxy routes
// report 503 at request time so the rest of the server stays usable.
func Load() (*Config, error) {
	// A missing .env just means everything comes from the real environment.
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 3000)
	if err != nil {
		return nil, err
	}
	tokenTTLHours, err := intEnv("TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	weatherCacheSecs, err := intEnv("WEATHER_CACHE_TTL_SECONDS", 600)
	if err != nil {
		return nil, err
	}
	upstreamTimeoutSecs, err := intEnv("UPSTREAM_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	authRateLimit, err := intEnv("AUTH_RATE_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	authRateWindowSecs, err := intEnv("AUTH_RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServerPort:      port,
		PublicDir:       getEnv("PUBLIC_DIR", "public"),
		DataDir:         getEnv("DATA_DIR", "."),
		StorageDriver:   getEnv("STORAGE_DRIVER", "file"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        time.Duration(tokenTTLHours) * time.Hour,
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		WeatherAPIKey:   os.Getenv("OPENWEATHER_API_KEY"),
		WeatherCacheTTL: time.Duration(weatherCacheSecs) * time.Second,
		UpstreamTimeout: time.Duration(upstreamTimeoutSecs) * time.Second,
		AuthRateLimit:   authRateLimit,
		AuthRateWindow:  time.Duration(authRateWindowSecs) * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
