// Package config loads runtime settings from the environment at process
// start. Credentials (database, session, SMTP, OAuth, object storage) are
// always injected this way and never embedded in source.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Storage backend selectors for uploaded avatars.
const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

// Config holds every runtime setting for the Eventrite server.
type Config struct {
	Addr          string
	DatabaseDSN   string
	SessionSecret string
	SessionMaxAge int // seconds
	SecureCookies bool

	// Avatar storage. StorageDisk writes under UploadDir; StorageS3
	// writes to an S3-compatible bucket.
	StorageBackend  string
	UploadDir       string
	S3AccountID     string
	S3Bucket        string
	AccessKeyID     string
	AccessKeySecret string

	// Outbound mail. The welcome-mail sender stays disabled when the
	// host or from address is missing.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// Optional Google OAuth sign-in.
	GoogleKey         string
	GoogleSecret      string
	GoogleCallbackURL string
}

// Load builds a Config from defaults overlaid with environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:              ":3000",
		SessionMaxAge:     86400 * 30,
		StorageBackend:    StorageDisk,
		UploadDir:         "./uploads",
		SMTPPort:          587,
		GoogleCallbackURL: "http://localhost:3000/auth/google/callback",
	}

	overlayString(&cfg.Addr, "ADDR")
	overlayString(&cfg.DatabaseDSN, "DSN")
	overlayString(&cfg.SessionSecret, "SESSION_SECRET")
	overlayString(&cfg.StorageBackend, "STORAGE_BACKEND")
	overlayString(&cfg.UploadDir, "UPLOAD_DIR")
	overlayString(&cfg.S3AccountID, "ACCOUNT_ID")
	overlayString(&cfg.S3Bucket, "BUCKET_NAME")
	overlayString(&cfg.AccessKeyID, "ACCESS_KEY_ID")
	overlayString(&cfg.AccessKeySecret, "ACCESS_KEY_SECRET")
	overlayString(&cfg.SMTPHost, "SMTP_HOST")
	overlayString(&cfg.SMTPUsername, "SMTP_USERNAME")
	overlayString(&cfg.SMTPPassword, "SMTP_PASSWORD")
	overlayString(&cfg.MailFrom, "MAIL_FROM")
	overlayString(&cfg.GoogleKey, "GOOGLE_KEY")
	overlayString(&cfg.GoogleSecret, "GOOGLE_SECRET")
	overlayString(&cfg.GoogleCallbackURL, "GOOGLE_CALLBACK_URL")

	if err := overlayInt(&cfg.SMTPPort, "SMTP_PORT"); err != nil {
		return nil, err
	}
	if err := overlayInt(&cfg.SessionMaxAge, "SESSION_MAX_AGE"); err != nil {
		return nil, err
	}
	if err := overlayBool(&cfg.SecureCookies, "SECURE_COOKIES"); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set in the environment")
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DSN is not set in the environment")
	}
	if cfg.StorageBackend != StorageDisk && cfg.StorageBackend != StorageS3 {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	return cfg, nil
}

// MailEnabled reports whether enough SMTP settings are present to send the
// welcome email.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func overlayString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func overlayBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}
