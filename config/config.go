package config

import (
	"os"
	"strconv"
)

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	Port                string
	DatabaseURL         string
	DataDir             string
	GeminiAPIKey        string
	SheetsCredentials   string
	SpreadsheetID       string
	AuditTolerance      float64
	ForecastHorizonDays int
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	AppConfig = Config{
		Port:                getEnv("PORT", "3000"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DataDir:             getEnv("DATA_DIR", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		SheetsCredentials:   getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SpreadsheetID:       getEnv("SPREADSHEET_ID", ""),
		AuditTolerance:      getEnvFloat("AUDIT_TOLERANCE", 0.01),
		ForecastHorizonDays: getEnvInt("FORECAST_HORIZON_DAYS", 30),
	}
	return AppConfig
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
