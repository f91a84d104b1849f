// Package config loads application settings from the environment, an optional
// .env file, and built-in defaults.
package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port               string
	CORSAllowedOrigins []string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Currency
	BaseCurrency       string
	RatesPrimaryURL    string
	RatesPrimaryPath   string
	RatesSecondaryURL  string
	RatesSecondaryPath string
	RatesTimeout       time.Duration
	// RatesAPIKey guards the internal rate refresh endpoint. Empty disables it.
	RatesAPIKey string

	// Import
	ImportRateLimit string
	ImportRulesPath string
}

var appConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "okane")
	v.SetDefault("DB_PASSWORD", "okane")
	v.SetDefault("DB_NAME", "okane")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "okane.db")

	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_EXPIRES_IN", "24h")

	v.SetDefault("BASE_CURRENCY", "MXN")
	v.SetDefault("RATES_PRIMARY_URL", "https://api.exchangerate-api.com/v4/latest/{base}")
	v.SetDefault("RATES_PRIMARY_PATH", "$.rates")
	v.SetDefault("RATES_SECONDARY_URL", "https://api.frankfurter.app/latest?from={base}")
	v.SetDefault("RATES_SECONDARY_PATH", "$.rates")
	v.SetDefault("RATES_TIMEOUT", "10s")
	v.SetDefault("RATES_API_KEY", "")

	v.SetDefault("IMPORT_RATE_LIMIT", "10-M")
	v.SetDefault("IMPORT_RULES_PATH", "")
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),

		BaseCurrency:       strings.ToUpper(v.GetString("BASE_CURRENCY")),
		RatesPrimaryURL:    v.GetString("RATES_PRIMARY_URL"),
		RatesPrimaryPath:   v.GetString("RATES_PRIMARY_PATH"),
		RatesSecondaryURL:  v.GetString("RATES_SECONDARY_URL"),
		RatesSecondaryPath: v.GetString("RATES_SECONDARY_PATH"),
		RatesAPIKey:        v.GetString("RATES_API_KEY"),

		ImportRateLimit: v.GetString("IMPORT_RATE_LIMIT"),
		ImportRulesPath: v.GetString("IMPORT_RULES_PATH"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.CORSAllowedOrigins = append(config.CORSAllowedOrigins, origin)
		}
	}

	config.JWTExpirationDur = parseDuration(v, "JWT_EXPIRES_IN", 24*time.Hour)
	config.RatesTimeout = parseDuration(v, "RATES_TIMEOUT", 10*time.Second)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// parseDuration reads key as a duration, falling back to def with a warning
// when the value does not parse.
func parseDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, def)
		return def
	}
	return d
}
