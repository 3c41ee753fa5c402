package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Model   ModelConfig
	Anomaly AnomalyConfig
	Insight InsightConfig
	Rules   RulesConfig
	Logger  LoggerConfig
}

type ModelConfig struct {
	Path string
}

type AnomalyConfig struct {
	ZThreshold float64
}

type InsightConfig struct {
	CurrencySymbol string
}

type RulesConfig struct {
	Path string
}

type LoggerConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// Absent .env is fine; plain environment variables still apply.

	zThreshold, err := strconv.ParseFloat(getEnv("ANOMALY_Z_THRESHOLD", "3.0"), 64)
	if err != nil || zThreshold <= 0 {
		zThreshold = 3.0
	}

	return &Config{
		Model: ModelConfig{
			Path: getEnv("MODEL_PATH", "models/categorizer.gob"),
		},
		Anomaly: AnomalyConfig{
			ZThreshold: zThreshold,
		},
		Insight: InsightConfig{
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "€"),
		},
		Rules: RulesConfig{
			Path: getEnv("RULES_FILE", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
