// Package config loads process configuration from environment variables.
// An optional .env file is read first so local development does not need
// exported variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment. Email
// and push settings may be empty; the respective services report a
// configuration error at send time rather than at startup.
type Config struct {
	Port    string
	DBPath  string
	BaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	EmailToken string
	EmailFrom  string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	CronSecret string

	LogLevel string
}

// Load reads the environment, applying defaults for everything the
// process can run without. TALLY_JWT_SECRET is the only hard
// requirement.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            envOr("TALLY_PORT", "8080"),
		DBPath:          envOr("TALLY_DB_PATH", "tally.db"),
		BaseURL:         envOr("TALLY_BASE_URL", "http://localhost:8080"),
		JWTSecret:       os.Getenv("TALLY_JWT_SECRET"),
		TokenTTL:        30 * 24 * time.Hour,
		EmailToken:      os.Getenv("TALLY_POSTMARK_TOKEN"),
		EmailFrom:       os.Getenv("TALLY_EMAIL_FROM"),
		VAPIDPublicKey:  os.Getenv("TALLY_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("TALLY_VAPID_PRIVATE_KEY"),
		VAPIDSubject:    envOr("TALLY_VAPID_SUBJECT", "mailto:admin@localhost"),
		CronSecret:      os.Getenv("TALLY_CRON_SECRET"),
		LogLevel:        envOr("TALLY_LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("TALLY_JWT_SECRET is required")
	}

	if ttl := os.Getenv("TALLY_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TALLY_TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
