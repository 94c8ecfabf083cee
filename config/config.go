package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultPairs = "BTC/USDT,ETH/USDT,SOL/USDT,ADA/USDT,DOGE/USDT,TRX/USDT,XRP/USDT,SUI/USDT"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Scan universe
	Pairs            string // comma-separated "BASE/QUOTE" symbols
	PrimaryTimeframe string
	TrendTimeframe   string
	PrimaryLimit     int
	TrendLimit       int
	BreakoutWindow   int

	// Signal thresholds
	LongThreshold    int
	ShortThreshold   int
	AlertThreshold   int

	// Exchange
	ExchangeBaseURL     string // empty uses the public MEXC API
	RetryAttempts       int
	RetryBaseDelay      time.Duration
	RetryMultiplier     float64
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration

	// Scheduling
	ScanInterval   time.Duration // 0 runs a single cycle and exits
	HeartbeatHours string        // comma-separated UTC hours, e.g. "8,20"

	// Notification
	TelegramToken  string
	TelegramChatID string
	WebhookURL     string

	// AlertCooldown suppresses repeat alerts per symbol/side. Defaults
	// to 0 (re-alert every qualifying cycle); the journal still records
	// deliveries.
	AlertCooldown time.Duration

	// Infrastructure
	RedisAddr     string // empty keeps the heartbeat mark in memory
	RedisPassword string
	SQLitePath    string // empty disables the alert journal
	MetricsAddr   string
}

// Load reads configuration from environment variables with sensible defaults.
// Telegram credentials are optional: without them alerts go to the log only.
func Load() *Config {
	return &Config{
		Pairs:            getEnv("PAIRS", defaultPairs),
		PrimaryTimeframe: getEnv("PRIMARY_TIMEFRAME", "15m"),
		TrendTimeframe:   getEnv("TREND_TIMEFRAME", "4h"),
		PrimaryLimit:     intEnv("PRIMARY_LIMIT", 300),
		TrendLimit:       intEnv("TREND_LIMIT", 250),
		BreakoutWindow:   intEnv("BREAKOUT_WINDOW", 96),

		LongThreshold:  intEnv("LONG_THRESHOLD", 7),
		ShortThreshold: intEnv("SHORT_THRESHOLD", 7),
		AlertThreshold: intEnv("ALERT_THRESHOLD", 7),

		ExchangeBaseURL:     getEnv("EXCHANGE_BASE_URL", ""),
		RetryAttempts:       intEnv("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:      durEnv("RETRY_BASE_DELAY", 5*time.Second),
		RetryMultiplier:     floatEnv("RETRY_MULTIPLIER", 2.0),
		BreakerMaxFailures:  intEnv("BREAKER_MAX_FAILURES", 5),
		BreakerResetTimeout: durEnv("BREAKER_RESET_TIMEOUT", 30*time.Second),

		ScanInterval:   durEnv("SCAN_INTERVAL", 0),
		HeartbeatHours: getEnv("HEARTBEAT_HOURS", "8,20"),

		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		AlertCooldown:  durEnv("ALERT_COOLDOWN", 0),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/alerts.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
	}
}

// ParsePairs splits the Pairs string into trimmed non-empty symbols,
// preserving order.
func (c *Config) ParsePairs() []string {
	parts := strings.Split(c.Pairs, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			log.Printf("[config] skipping invalid pair: %q", p)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// ParseHeartbeatHours parses HeartbeatHours into a slice of UTC hours.
func (c *Config) ParseHeartbeatHours() []int {
	parts := strings.Split(c.HeartbeatHours, ",")
	hours := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 23 {
			log.Printf("[config] skipping invalid heartbeat hour: %q", p)
			continue
		}
		hours = append(hours, n)
	}
	return hours
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func durEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
