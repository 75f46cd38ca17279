package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=disaster port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	CORSOrigins    string
	LogLevel       string

	SessionTTL          time.Duration
	SessionCookieSecure bool
	RedisURL            string // empty keeps sessions in process memory

	ImageStorage     string
	ProfileImagePath string // local storage root for admin profile pictures
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string

	// Optional administrator created at startup when absent.
	AdminName     string
	AdminEmail    string
	AdminPassword string

	warnings []string
}

// Load reads the configuration from the environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	tokenTTL, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	secure, err := getBool("SESSION_COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:      strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseDSN:         getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            tokenTTL,
		CORSOrigins:         getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SessionTTL:          sessionTTL,
		SessionCookieSecure: secure,
		RedisURL:            getEnv("REDIS_URL", ""),
		ImageStorage:        strings.ToLower(getEnv("IMAGE_STORAGE", StorageLocal)),
		ProfileImagePath:    getEnv("PROFILE_IMAGE_PATH", "./profile-images"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		AdminName:           getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == DriverPostgres && cfg.DatabaseDSN == defaultDSN {
		cfg.warnings = append(cfg.warnings, "DATABASE_DSN is using the default value, set your own connection string in production")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		cfg.warnings = append(cfg.warnings, "CORS_ALLOWED_ORIGINS is using the default value, set your own domain in production")
	}

	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}

	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.ImageStorage {
	case StorageLocal:
		if c.ProfileImagePath == "" {
			return errors.New("PROFILE_IMAGE_PATH is required for local image storage")
		}
	case StorageS3:
		if c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY are required for s3 image storage")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return nil
}

// Warnings lists the insecure defaults Load fell back to, for the caller to log
// once its logger is configured.
func (c *Config) Warnings() []string {
	return c.warnings
}

// CORSOriginList splits the comma separated origin setting.
func (c *Config) CORSOriginList() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
