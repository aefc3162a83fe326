package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// Twilio credentials. When any is empty the service runs with the
	// console notifier instead of sending real traffic.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// PublicURL is the externally visible base URL of the /sms webhook,
	// needed to validate Twilio request signatures. Empty disables
	// validation.
	PublicURL string

	VAPIDPublicKey  string
	VAPIDPrivateKey string

	BackupBucket     string
	BackupEndpoint   string
	BackupRegion     string
	BackupAccessKey  string
	BackupSecretKey  string
	BackupPassphrase string
	BackupInterval   time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if h, err := strconv.Atoi(v); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return def
}

// Load reads all env vars and builds the config.
func Load() *Config {
	return &Config{
		Port:     getEnv("WORKALONE_PORT", "8080"),
		DBPath:   getEnv("WORKALONE_DB_PATH", "workalone.db"),
		LogLevel: getEnv("WORKALONE_LOG_LEVEL", "info"),

		TwilioAccountSID: getEnv("WORKALONE_TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("WORKALONE_TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("WORKALONE_TWILIO_FROM_NUMBER", ""),

		PublicURL: getEnv("WORKALONE_PUBLIC_URL", ""),

		VAPIDPublicKey:  getEnv("WORKALONE_VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("WORKALONE_VAPID_PRIVATE_KEY", ""),

		BackupBucket:     getEnv("WORKALONE_BACKUP_BUCKET", ""),
		BackupEndpoint:   getEnv("WORKALONE_BACKUP_ENDPOINT", ""),
		BackupRegion:     getEnv("WORKALONE_BACKUP_REGION", "auto"),
		BackupAccessKey:  getEnv("WORKALONE_BACKUP_ACCESS_KEY", ""),
		BackupSecretKey:  getEnv("WORKALONE_BACKUP_SECRET_KEY", ""),
		BackupPassphrase: getEnv("WORKALONE_BACKUP_PASSPHRASE", ""),
		BackupInterval:   getDurationEnv("WORKALONE_BACKUP_INTERVAL", 24*time.Hour),
	}
}

// TwilioConfigured reports whether real SMS delivery is possible.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}
