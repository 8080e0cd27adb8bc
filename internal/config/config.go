package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BudgetAlertMode controls how often a budget over its threshold is reported.
type BudgetAlertMode string

const (
	// BudgetAlertDaily re-evaluates and re-alerts every day.
	BudgetAlertDaily BudgetAlertMode = "daily"
	// BudgetAlertMonthly alerts at most once per budget per calendar month.
	BudgetAlertMonthly BudgetAlertMode = "monthly"
)

// Config holds application configuration
type Config struct {
	Env string

	// Telegram
	BotToken string

	// Local HTTP API
	APIHost string
	APIPort string
	APIKey  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Scheduled jobs
	DailySummaryHour  int
	BudgetAlertMode   BudgetAlertMode
	SchedulerLocation *time.Location

	// Conversation
	SessionTTL      time.Duration
	DefaultCurrency string

	// Rate lookup
	RatesPrimaryURL  string
	RatesFallbackURL string
	RequestTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		BotToken: getEnv("BOT_TOKEN", ""),

		APIHost: getEnv("API_HOST", "127.0.0.1"),
		APIPort: getEnv("API_PORT", "5000"),
		APIKey:  getEnv("API_KEY", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finbot"),
		DBPassword: getEnv("DB_PASSWORD", "finbot"),
		DBName:     getEnv("DB_NAME", "finbot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "RUB")),

		RatesPrimaryURL:  getEnv("RATES_PRIMARY_URL", "https://api.exchangerate.host/latest"),
		RatesFallbackURL: getEnv("RATES_FALLBACK_URL", "https://open.er-api.com/v6/latest"),
	}

	hour, err := parseHour(getEnv("DAILY_SUMMARY_HOUR", "21"))
	if err != nil {
		return nil, err
	}
	cfg.DailySummaryHour = hour

	mode, err := parseAlertMode(getEnv("BUDGET_ALERT_MODE", string(BudgetAlertDaily)))
	if err != nil {
		return nil, err
	}
	cfg.BudgetAlertMode = mode

	loc, err := time.LoadLocation(getEnv("SCHEDULER_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE: %w", err)
	}
	cfg.SchedulerLocation = loc

	ttl, err := parseDuration("SESSION_TTL", getEnv("SESSION_TTL", "24h"), true)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = ttl

	timeout, err := parseDuration("REQUEST_TIMEOUT", getEnv("REQUEST_TIMEOUT", "5s"), false)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	if len(cfg.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", cfg.DefaultCurrency)
	}

	return cfg, nil
}

// APIAddr returns the listen address of the local HTTP API.
func (c *Config) APIAddr() string {
	return c.APIHost + ":" + c.APIPort
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid DAILY_SUMMARY_HOUR %q: %w", s, err)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("DAILY_SUMMARY_HOUR must be between 0 and 23, got %d", h)
	}
	return h, nil
}

func parseAlertMode(s string) (BudgetAlertMode, error) {
	switch BudgetAlertMode(strings.ToLower(s)) {
	case BudgetAlertDaily:
		return BudgetAlertDaily, nil
	case BudgetAlertMonthly:
		return BudgetAlertMonthly, nil
	default:
		return "", fmt.Errorf("invalid BUDGET_ALERT_MODE %q: must be daily or monthly", s)
	}
}

func parseDuration(key, s string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
