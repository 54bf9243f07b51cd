package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment
// variables (with optional .env support for local development).
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Loyalty  LoyaltyConfig
	Payment  PaymentConfig
	Push     PushConfig
	Admin    AdminConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout int
}

// StoreConfig carries the single tenant's pricing and location settings.
type StoreConfig struct {
	Lat              float64
	Lon              float64
	Currency         string
	TaxRate          float64
	ServiceFeeCents  int64
	ServiceFeePct    float64
	MenuCacheSeconds int
}

type LoyaltyConfig struct {
	// EarnRate is stars earned per whole dollar of order total.
	EarnRate int64
	// RedeemCentsPerStar is the checkout discount per redeemed star.
	RedeemCentsPerStar int64
	ReferralBonusStars int64
}

type PaymentConfig struct {
	GatewayURL string
	APIKey     string
}

type PushConfig struct {
	URL    string
	AppID  string
	APIKey string
}

type AdminConfig struct {
	// APIKeyHashes are bcrypt hashes of accepted admin keys.
	APIKeyHashes []string
}

type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

type RedisConfig struct {
	URL string
}

func Load() (*Config, error) {
	_ = godotenv.Load() // load .env if it exists

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 5),
		},
		Store: StoreConfig{
			Lat:              getEnvAsFloat("STORE_LAT", 0),
			Lon:              getEnvAsFloat("STORE_LON", 0),
			Currency:         getEnv("CURRENCY", "usd"),
			TaxRate:          getEnvAsFloat("TAX_RATE", 0.0875),
			ServiceFeeCents:  int64(getEnvAsInt("SERVICE_FEE_CENTS", 0)),
			ServiceFeePct:    getEnvAsFloat("SERVICE_FEE_PCT", 0),
			MenuCacheSeconds: getEnvAsInt("MENU_CACHE_SECONDS", 60),
		},
		Loyalty: LoyaltyConfig{
			EarnRate:           int64(getEnvAsInt("LOYALTY_EARN_RATE", 1)),
			RedeemCentsPerStar: int64(getEnvAsInt("LOYALTY_REDEEM_CENTS_PER_STAR", 5)),
			ReferralBonusStars: int64(getEnvAsInt("LOYALTY_REFERRAL_BONUS_STARS", 50)),
		},
		Payment: PaymentConfig{
			GatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
			APIKey:     os.Getenv("PAYMENT_API_KEY"),
		},
		Push: PushConfig{
			URL:    getEnv("PUSH_URL", "https://onesignal.com/api/v1/notifications"),
			AppID:  os.Getenv("PUSH_APP_ID"),
			APIKey: os.Getenv("PUSH_API_KEY"),
		},
		Admin: AdminConfig{
			APIKeyHashes: getEnvAsSlice("ADMIN_API_KEY_HASHES", nil),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Store.TaxRate < 0 || c.Store.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be in [0,1), got %v", c.Store.TaxRate)
	}
	if c.Store.ServiceFeePct < 0 || c.Store.ServiceFeePct >= 1 {
		return fmt.Errorf("SERVICE_FEE_PCT must be in [0,1), got %v", c.Store.ServiceFeePct)
	}
	if c.Loyalty.EarnRate < 0 || c.Loyalty.RedeemCentsPerStar < 0 {
		return fmt.Errorf("loyalty rates must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
