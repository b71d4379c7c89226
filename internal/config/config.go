package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string // CORS allowed origins

	UpstreamURL     string // base URL of the bowling network API
	UpstreamTimeout time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration // verification ticket lifetime

	OTPExpiry         time.Duration // OTP_EXPIRY_MS
	OTPMaxEntries     int           // 0 = unbounded
	OTPSweepInterval  time.Duration // 0 = no background sweep
	OTPReturnToClient bool          // dev only: echo the issued code in the response
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		UpstreamURL:     strings.TrimRight(getEnv("UPSTREAM_API_URL", "http://localhost:8080"), "/"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("TICKET_EXPIRY", 15*time.Minute),

		OTPExpiry:         time.Duration(getEnvInt("OTP_EXPIRY_MS", 300000)) * time.Millisecond,
		OTPMaxEntries:     getEnvInt("OTP_MAX_ENTRIES", 0),
		OTPSweepInterval:  getEnvDuration("OTP_SWEEP_INTERVAL", 0),
		OTPReturnToClient: getEnvBool("OTP_RETURN_TO_CLIENT", false),
	}
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("config: APP_PORT must be set")
	}
	if c.UpstreamURL == "" {
		return errors.New("config: UPSTREAM_API_URL must be set")
	}
	if c.OTPExpiry <= 0 {
		return errors.New("config: OTP_EXPIRY_MS must be positive")
	}
	if c.OTPMaxEntries < 0 {
		return errors.New("config: OTP_MAX_ENTRIES must not be negative")
	}
	if c.OTPReturnToClient && c.IsProduction() {
		return errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
