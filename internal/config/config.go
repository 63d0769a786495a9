// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Addr           string
	DatabaseURL    string
	MaxUploadBytes int64
	CORSOrigins    []string
	// TrustProxy keys unauthenticated clients by X-Forwarded-For instead of
	// the peer address. Enable only behind a proxy that sets the header.
	TrustProxy bool

	Auth    AuthConfig
	Storage StorageConfig
	AI      AIConfig

	RedisURL       string
	RateLimitsFile string

	LogLevel  string
	LogFormat string
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string
	Audience  string
	JWKSURL   string
	Issuer    string
}

// StorageConfig configures the S3-compatible photo bucket.
type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKeyID    string
	SecretKey      string
	ForcePathStyle bool
	URLTTL         time.Duration
}

// AIConfig configures the vision model client.
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LoadDotEnv reads a .env file when one exists. Variables already present in
// the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	c := &Config{
		Addr:        env("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: splitList(env("CORS_ORIGINS", "*")),
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Audience:  env("AUTH_AUDIENCE", "authenticated"),
			JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
			Issuer:    os.Getenv("AUTH_ISSUER"),
		},
		Storage: StorageConfig{
			Bucket:      env("S3_BUCKET", "food-images"),
			Region:      env("S3_REGION", "us-east-1"),
			Endpoint:    os.Getenv("S3_ENDPOINT"),
			AccessKeyID: os.Getenv("S3_ACCESS_KEY_ID"),
			SecretKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		AI: AIConfig{
			BaseURL: env("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
			APIKey:  os.Getenv("AI_API_KEY"),
			Model:   env("AI_MODEL", "gemini-2.0-flash"),
		},
		RedisURL:       os.Getenv("REDIS_URL"),
		RateLimitsFile: os.Getenv("RATE_LIMITS_FILE"),
		LogLevel:       env("LOG_LEVEL", "info"),
		LogFormat:      env("LOG_FORMAT", "json"),
	}

	var err error
	if c.MaxUploadBytes, err = strconv.ParseInt(env("MAX_UPLOAD_BYTES", "10485760"), 10, 64); err != nil || c.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: must be a positive integer")
	}
	if c.TrustProxy, err = strconv.ParseBool(env("TRUST_PROXY", "false")); err != nil {
		return nil, fmt.Errorf("TRUST_PROXY: %w", err)
	}
	if c.Storage.ForcePathStyle, err = strconv.ParseBool(env("S3_FORCE_PATH_STYLE", "true")); err != nil {
		return nil, fmt.Errorf("S3_FORCE_PATH_STYLE: %w", err)
	}
	if c.Storage.URLTTL, err = time.ParseDuration(env("PHOTO_URL_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("PHOTO_URL_TTL: %w", err)
	}
	return c, nil
}

// Validate checks settings required to serve traffic against real backends.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET or AUTH_JWKS_URL is required"))
	}
	if c.AI.APIKey == "" {
		errs = append(errs, errors.New("AI_API_KEY is required"))
	}
	return errors.Join(errs...)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
