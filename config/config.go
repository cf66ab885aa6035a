package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"counterTradeBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Primary (observed) account API
	PrimaryAPIKey    string
	PrimarySecretKey string

	// Counter (mirroring) account API
	CounterAPIKey    string
	CounterSecretKey string

	IsTestnet bool

	// Mirroring Parameters
	SettleAsset string // Settlement asset for balance snapshots (e.g. "USDT")

	// Database
	DBPath string

	// Notification (optional; notifications are disabled when unset)
	TelegramBotToken string
	TelegramChatID   string

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter

	// Connection Settings for the order-update stream
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Primary account API
	cfg.PrimaryAPIKey = getEnv("PRIMARY_API_KEY", "")
	cfg.PrimarySecretKey = getEnv("PRIMARY_API_SECRET", "")
	if cfg.PrimaryAPIKey == "" {
		errs = append(errs, "PRIMARY_API_KEY must be set")
	}
	if cfg.PrimarySecretKey == "" {
		errs = append(errs, "PRIMARY_API_SECRET must be set")
	}

	// Counter account API
	cfg.CounterAPIKey = getEnv("COUNTER_API_KEY", "")
	cfg.CounterSecretKey = getEnv("COUNTER_API_SECRET", "")
	if cfg.CounterAPIKey == "" {
		errs = append(errs, "COUNTER_API_KEY must be set")
	}
	if cfg.CounterSecretKey == "" {
		errs = append(errs, "COUNTER_API_SECRET must be set")
	}

	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	// Mirroring Parameters
	cfg.SettleAsset = getEnv("SETTLE_ASSET", "USDT")
	if cfg.SettleAsset == "" {
		errs = append(errs, "SETTLE_ASSET must be set")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/counter_trade_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Notification
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == "" {
		errs = append(errs, "TELEGRAM_CHAT_ID must be set when TELEGRAM_BOT_TOKEN is set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Connection Settings
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// For non-required fields, default is acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
