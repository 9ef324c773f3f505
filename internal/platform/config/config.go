package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Courier
	CourierBaseURL string
	CourierAPIKey  string
	CourierTimeout time.Duration

	// Transfers
	TransferCeiling decimal.Decimal

	// Idempotency
	IdempotencyStaleAfter time.Duration

	// Compensation worker
	WorkerPollInterval     time.Duration
	WorkerBatchSize        int
	CompensationBaseDelay  time.Duration
	CompensationMaxDelay   time.Duration
	MaxCompensationRetry   int
	CompensationStaleAfter time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("COURIER_BASE_URL", "http://localhost:9090")
	viper.SetDefault("COURIER_API_KEY", "")
	viper.SetDefault("COURIER_TIMEOUT", "10s")
	viper.SetDefault("TRANSFER_CEILING", "10000")
	viper.SetDefault("IDEMPOTENCY_STALE_AFTER", "5m")
	viper.SetDefault("WORKER_POLL_INTERVAL", "30s")
	viper.SetDefault("WORKER_BATCH_SIZE", 20)
	viper.SetDefault("COMPENSATION_BASE_DELAY", "1m")
	viper.SetDefault("COMPENSATION_MAX_DELAY", "1h")
	viper.SetDefault("MAX_COMPENSATION_RETRY", 8)
	viper.SetDefault("COMPENSATION_STALE_AFTER", "10m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.CourierBaseURL = viper.GetString("COURIER_BASE_URL")
	cfg.CourierAPIKey = viper.GetString("COURIER_API_KEY")
	cfg.CourierTimeout = parseDurationOr("COURIER_TIMEOUT", 10*time.Second)

	ceiling, err := decimal.NewFromString(viper.GetString("TRANSFER_CEILING"))
	if err != nil {
		log.Printf("Warning: Invalid value for TRANSFER_CEILING (%q). Defaulting to 10000.\n", viper.GetString("TRANSFER_CEILING"))
		ceiling = decimal.NewFromInt(10000)
	}
	cfg.TransferCeiling = ceiling

	cfg.IdempotencyStaleAfter = parseDurationOr("IDEMPOTENCY_STALE_AFTER", 5*time.Minute)
	cfg.WorkerPollInterval = parseDurationOr("WORKER_POLL_INTERVAL", 30*time.Second)
	cfg.WorkerBatchSize = viper.GetInt("WORKER_BATCH_SIZE")
	cfg.CompensationBaseDelay = parseDurationOr("COMPENSATION_BASE_DELAY", time.Minute)
	cfg.CompensationMaxDelay = parseDurationOr("COMPENSATION_MAX_DELAY", time.Hour)
	cfg.MaxCompensationRetry = viper.GetInt("MAX_COMPENSATION_RETRY")
	cfg.CompensationStaleAfter = parseDurationOr("COMPENSATION_STALE_AFTER", 10*time.Minute)

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s (%q). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
