package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StoreKind names the persistence backend selected by the store URI scheme.
type StoreKind string

const (
	StoreMongo    StoreKind = "mongodb"
	StorePostgres StoreKind = "postgres"
)

// Config holds application configuration.
type Config struct {
	StoreURI        string
	StoreDatabase   string
	RateProviderURL string
	RequestTimeout  time.Duration
	BaseCurrency    string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	RunMigrations   bool
	MigrationsPath  string
	// CORSAllowedOrigins is the list of browser origins allowed to call the API.
	CORSAllowedOrigins []string
	// UploadRateLimit uses the limiter format, e.g. "30-M" for 30 per minute.
	UploadRateLimit string
	MaxUploadBytes  int64
	// ImportMaxConcurrentRows bounds in-flight row tasks per import. 0 means unbounded.
	ImportMaxConcurrentRows int
}

// StoreKind reports which backend the store URI points at.
func (c *Config) StoreKind() (StoreKind, error) {
	u, err := url.Parse(c.StoreURI)
	if err != nil {
		return "", fmt.Errorf("invalid STORE_URI: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return StoreMongo, nil
	case "postgres", "postgresql":
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("unsupported STORE_URI scheme %q", u.Scheme)
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORE_URI", "mongodb://localhost:27017")
	v.SetDefault("STORE_DATABASE", "money_records")
	v.SetDefault("RATE_PROVIDER_URL", "")
	v.SetDefault("REQUEST_TIMEOUT_MS", 5000)
	v.SetDefault("BASE_CURRENCY", "INR")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("UPLOAD_RATE_LIMIT", "30-M")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 10)
	v.SetDefault("IMPORT_MAX_CONCURRENT_ROWS", 64)

	// Values from .env are already in the process environment, real env vars win.
	v.AutomaticEnv()

	cfg := &Config{
		StoreURI:        v.GetString("STORE_URI"),
		StoreDatabase:   v.GetString("STORE_DATABASE"),
		RateProviderURL: v.GetString("RATE_PROVIDER_URL"),
		BaseCurrency:    strings.ToUpper(strings.TrimSpace(v.GetString("BASE_CURRENCY"))),
		Port:            v.GetString("PORT"),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:   v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		UploadRateLimit: v.GetString("UPLOAD_RATE_LIMIT"),
	}

	if cfg.RateProviderURL == "" {
		log.Println("Warning: RATE_PROVIDER_URL not set. Amounts will be stored unconverted.")
	}

	timeoutMS := v.GetInt("REQUEST_TIMEOUT_MS")
	if timeoutMS <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_MS must be positive, got %d", timeoutMS)
	}
	cfg.RequestTimeout = time.Duration(timeoutMS) * time.Millisecond

	maxMB := v.GetInt64("MAX_UPLOAD_SIZE_MB")
	if maxMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive, got %d", maxMB)
	}
	cfg.MaxUploadBytes = maxMB << 20

	cfg.ImportMaxConcurrentRows = v.GetInt("IMPORT_MAX_CONCURRENT_ROWS")
	if cfg.ImportMaxConcurrentRows < 0 {
		return nil, fmt.Errorf("IMPORT_MAX_CONCURRENT_ROWS cannot be negative, got %d", cfg.ImportMaxConcurrentRows)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.BaseCurrency == "" {
		return nil, fmt.Errorf("BASE_CURRENCY cannot be empty")
	}
	if _, err := cfg.StoreKind(); err != nil {
		return nil, err
	}

	return cfg, nil
}
