package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	Port        string
	LogMode     string
	DatabaseURL string

	ClerkSecretKey     string
	ClerkWebhookSecret string

	RedisAddr string

	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string

	FCMCredentialsPath string

	MetricsUser string
	MetricsPass string
	PprofSecret string

	// SweepInterval is how often the background progress sweep runs. Zero
	// disables it.
	SweepInterval time.Duration
}

// Load reads .env (if present) into the environment and then builds a Config
// from it. DATABASE_URL and CLERK_SECRET_KEY are required.
func Load(files ...string) (*Config, error) {
	// a missing .env is fine; variables may come from the process environment
	_ = godotenv.Load(files...)

	cfg := &Config{
		Port:               getEnv("PORT", "3333"),
		LogMode:            getEnv("LOG_MODE", "dev"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripeSuccessURL:   getEnv("STRIPE_SUCCESS_URL", "https://ditch.app/success?session_id={CHECKOUT_SESSION_ID}"),
		StripeCancelURL:    getEnv("STRIPE_CANCEL_URL", "https://ditch.app/pricing"),
		FCMCredentialsPath: getEnv("FCM_CREDENTIALS_PATH", "./serviceAccountKey.json"),
		MetricsUser:        os.Getenv("METRICS_USER"),
		MetricsPass:        os.Getenv("METRICS_PASS"),
		PprofSecret:        os.Getenv("PPROF_SECRET"),
	}

	sweep, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil || sweep < 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %q", os.Getenv("SWEEP_INTERVAL"))
	}
	cfg.SweepInterval = sweep

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingConfig)
	}
	if cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("%w: CLERK_SECRET_KEY", ErrMissingConfig)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
