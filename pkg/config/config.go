package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Environment
// variables are read here and nowhere else.
type Config struct {
	Env  string // development, staging, production
	Port string // artifact API port

	// Pipeline
	LedgerDir string
	OutputDir string
	Benchmark string
	Universe  []string // empty means auto-load from index membership

	Provider  ProviderConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Portfolio PortfolioConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ProviderConfig holds market data provider settings.
type ProviderConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64 // politeness budget toward the upstream provider
	LookbackYears  int     // history ceiling for backtests
	CacheTTL       time.Duration
}

// DatabaseConfig holds the optional PostgreSQL ledger mirror settings.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a ledger mirror is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// RedisConfig holds the optional snapshot cache settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Addr returns the host:port address.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

// PortfolioConfig holds allocation constraints.
type PortfolioConfig struct {
	MaxPositions     int
	MaxWeight        float64
	ReferenceCapital float64
}

// defaultUniverse is the fallback symbol set used when UNIVERSE is neither
// set nor "auto".
var defaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AVGO",
	"JPM", "V", "UNH", "XOM", "LLY", "MA", "HD", "PG", "COST", "ORCL",
	"MRK", "ABBV", "CRM", "AMD", "NFLX", "KO", "PEP",
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8090"),

		LedgerDir: getEnv("LEDGER_DIR", "data/ledger"),
		OutputDir: getEnv("OUTPUT_DIR", "data/out"),
		Benchmark: getEnv("BENCHMARK", "SPY"),
		Universe:  parseUniverse(getEnv("UNIVERSE", "")),

		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:        getEnvAsDuration("PROVIDER_TIMEOUT", "30s"),
			RequestsPerSec: getEnvAsFloat("PROVIDER_RPS", 5.0),
			LookbackYears:  getEnvAsInt("PROVIDER_LOOKBACK_YEARS", 2),
			CacheTTL:       getEnvAsDuration("PROVIDER_CACHE_TTL", "10m"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Portfolio: PortfolioConfig{
			MaxPositions:     getEnvAsInt("PORTFOLIO_MAX_POSITIONS", 10),
			MaxWeight:        getEnvAsFloat("PORTFOLIO_MAX_WEIGHT", 0.2),
			ReferenceCapital: getEnvAsFloat("PORTFOLIO_REFERENCE_CAPITAL", 10_000),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required configuration values.
func (c *Config) validate() error {
	if c.LedgerDir == "" {
		return fmt.Errorf("LEDGER_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Portfolio.MaxWeight <= 0 || c.Portfolio.MaxWeight > 1 {
		return fmt.Errorf("PORTFOLIO_MAX_WEIGHT must be in (0, 1]")
	}
	return nil
}

// parseUniverse parses a comma-separated symbol list. "auto" yields an
// empty slice, which tells the universe loader to scrape index membership.
func parseUniverse(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultUniverse
	}
	if strings.EqualFold(raw, "auto") {
		return nil
	}

	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// loadEnvFile tries to load .env from a few likely locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
