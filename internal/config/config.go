// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Environment is the runtime environment ("production" or "development").
	Environment string

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// KMSMasterKey is the master secret all signing keys are derived from.
	// Required in production (at least 64 characters); synthesized with a
	// warning in development when absent.
	KMSMasterKey string
	// KMSDerivationSalt namespaces derived key contexts. Required in
	// production; synthesized with a warning in development when absent.
	KMSDerivationSalt string
	// KMSMasterKeyEncrypted is an optional base64 ciphertext of the master
	// secret, decrypted at startup through the KMS keeper at KMSKeyURI.
	KMSMasterKeyEncrypted string
	// KMSProvider is the KMS provider used to decrypt KMSMasterKeyEncrypted
	// (e.g., "gcpkms", "awskms", "hashivault", "localsecrets").
	KMSProvider string
	// KMSKeyURI is the keeper URI for the configured KMS provider.
	KMSKeyURI string

	// TokenExpiration is the default lifetime of issued bearer tokens.
	TokenExpiration time.Duration
	// RotationInterval is the production key rotation window. Cache entries
	// older than this are treated as stale and re-derived; the background
	// sweeper evicts them on the same interval.
	RotationInterval time.Duration

	// RateLimitEnabled indicates whether rate limiting for the token endpoint is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second on the token endpoint.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for token endpoint rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Runtime environment
		Environment: env.GetString("ENVIRONMENT", "development"),

		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key material sources
		KMSMasterKey:          env.GetString("KMS_MASTER_KEY", ""),
		KMSDerivationSalt:     env.GetString("KMS_DERIVATION_SALT", ""),
		KMSMasterKeyEncrypted: env.GetString("KMS_MASTER_KEY_ENCRYPTED", ""),
		KMSProvider:           env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:             env.GetString("KMS_KEY_URI", ""),

		// Token and key lifetimes
		TokenExpiration:  env.GetDuration("KMS_TOKEN_EXPIRATION_HOURS", 24, time.Hour),
		RotationInterval: env.GetDuration("KMS_ROTATION_INTERVAL_HOURS", 24, time.Hour),

		// Rate limiting for the token endpoint
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "kms"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
