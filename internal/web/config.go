package web

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paysimlabs/paysim-go/sdk"
)

// Config holds the demo application configuration. It is the single place
// the environment is read; the SDK only ever sees the explicit struct built
// by SDKConfig.
type Config struct {
	// Server configuration
	Host string
	Port int

	// PaySim API credentials and endpoint
	ClientID   string
	SecretKey  string
	BaseURL    string
	PathPrefix string

	// Request pipeline configuration
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Operational settings
	LogLevel        string
	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxRetries, err := strconv.Atoi(getEnvOrDefault("PAYSIM_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSIM_MAX_RETRIES: %w", err)
	}

	requestTimeout, err := strconv.Atoi(getEnvOrDefault("PAYSIM_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSIM_TIMEOUT_SECONDS: %w", err)
	}

	retryBase, err := strconv.Atoi(getEnvOrDefault("PAYSIM_RETRY_BASE_MS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSIM_RETRY_BASE_MS: %w", err)
	}

	retryMax, err := strconv.Atoi(getEnvOrDefault("PAYSIM_RETRY_MAX_MS", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSIM_RETRY_MAX_MS: %w", err)
	}

	shutdownTimeout, err := strconv.Atoi(getEnvOrDefault("SHUTDOWN_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            port,
		ClientID:        os.Getenv("PAYSIM_CLIENT_ID"),
		SecretKey:       os.Getenv("PAYSIM_SECRET_KEY"),
		BaseURL:         getEnvOrDefault("PAYSIM_BASE_URL", "https://api.paysim.dev"),
		PathPrefix:      getEnvOrDefault("PAYSIM_PATH_PREFIX", sdk.DefaultPathPrefix),
		RequestTimeout:  time.Duration(requestTimeout) * time.Second,
		MaxRetries:      maxRetries,
		RetryBaseDelay:  time.Duration(retryBase) * time.Millisecond,
		RetryMaxDelay:   time.Duration(retryMax) * time.Millisecond,
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
	}

	if cfg.ClientID == "" {
		return nil, fmt.Errorf("PAYSIM_CLIENT_ID is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("PAYSIM_SECRET_KEY is required")
	}

	return cfg, nil
}

// NewClientConfig assembles the payment client configuration. The client
// never reads the environment itself; everything flows through this struct.
func NewClientConfig(c *Config) *sdk.Config {
	config := sdk.DefaultConfig().
		WithCredentials(c.ClientID, c.SecretKey).
		WithBaseURL(c.BaseURL).
		WithPathPrefix(c.PathPrefix).
		WithTimeout(c.RequestTimeout).
		WithRetries(c.MaxRetries).
		WithObserver(newMetricsObserver())
	config.RetryConfig.InitialInterval = c.RetryBaseDelay
	config.RetryConfig.MaxInterval = c.RetryMaxDelay
	return config
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
