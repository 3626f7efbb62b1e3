package sdk

import (
	"time"
)

// DefaultPathPrefix is prepended to every request path unless the
// configuration overrides it. The prefix is resolved once at client
// construction, never branched per call.
const DefaultPathPrefix = "api/v1"

// Config holds the configuration for the payment client. Credentials are
// required; everything else has sensible defaults.
//
// Configuration is built with the fluent builder pattern:
//
//	config := sdk.DefaultConfig().
//	    WithCredentials("pk_live_123", os.Getenv("PAYSIM_SECRET_KEY")).
//	    WithBaseURL("https://api.paysim.dev").
//	    WithTimeout(10 * time.Second).
//	    WithRetries(5)
//
//	client, err := sdk.NewClient(config)
type Config struct {
	// ClientID identifies the account. Sent as X-Client-ID.
	ClientID string

	// SecretKey is the shared signing secret. Never sent over the wire and
	// never logged; only its HMAC digests leave the process.
	SecretKey string

	// BaseURL is the base URL of the payment API.
	// Default: "https://api.paysim.dev"
	BaseURL string

	// PathPrefix is joined between the base URL and every request path.
	// Default: "api/v1". Set to "" for hosts that serve the API at the root.
	PathPrefix string

	// Timeout bounds each individual network attempt. Retries each get a
	// fresh timeout. Default: 30s
	Timeout time.Duration

	// RetryConfig configures the default exponential backoff.
	RetryConfig RetryConfig

	// TransportConfig holds HTTP connection pool settings.
	TransportConfig TransportConfig

	// Headers are custom headers added to every request, e.g. correlation
	// IDs. The signing headers cannot be overridden here.
	Headers map[string]string

	// RetryStrategy overrides RetryConfig with a custom strategy when set.
	RetryStrategy RetryStrategy

	// Observer receives operation hooks. Defaults to NoopObserver.
	Observer Observer
}

// RetryConfig holds retry-related configuration for automatic request
// retries. The client uses exponential backoff with jitter by default.
type RetryConfig struct {
	// MaxRetries is the maximum number of retries after the initial
	// attempt. 0 disables retries: exactly one attempt per call.
	// Default: 3
	MaxRetries int

	// InitialInterval is the delay before the first retry.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the computed retry delay. A larger server-provided
	// Retry-After still wins over the cap. Default: 5s
	MaxInterval time.Duration

	// Multiplier is the exponential backoff multiplier. Default: 2.0
	Multiplier float64

	// Jitter is the randomization factor applied to each delay (0.0-1.0).
	// Default: 0.3
	Jitter float64
}

// TransportConfig holds HTTP transport configuration for connection pooling.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle connections.
	// Default: 100
	MaxIdleConns int

	// MaxConnsPerHost controls the maximum connections per host.
	// Default: 10
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection is kept.
	// Default: 90s
	IdleConnTimeout time.Duration
}

// DefaultConfig returns a Config with defaults for everything except the
// credentials, which the caller must supply before NewClient will accept it.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.paysim.dev",
		PathPrefix: DefaultPathPrefix,
		Timeout:    30 * time.Second,
		RetryConfig: RetryConfig{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
			Jitter:          0.3,
		},
		TransportConfig: TransportConfig{
			MaxIdleConns:    100,
			MaxConnsPerHost: 10,
			IdleConnTimeout: 90 * time.Second,
		},
		Headers:  make(map[string]string),
		Observer: &NoopObserver{},
	}
}

// WithCredentials sets the client identifier and signing secret.
func (c *Config) WithCredentials(clientID, secretKey string) *Config {
	c.ClientID = clientID
	c.SecretKey = secretKey
	return c
}

// WithBaseURL sets the base URL of the payment API.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithPathPrefix sets the path prefix joined ahead of every request path.
// Pass "" for hosts that serve the API at the root.
func (c *Config) WithPathPrefix(prefix string) *Config {
	c.PathPrefix = prefix
	return c
}

// WithTimeout sets the per-attempt request timeout.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRetries sets the maximum number of retries after the initial attempt.
// Set to 0 to disable automatic retries.
func (c *Config) WithRetries(maxRetries int) *Config {
	c.RetryConfig.MaxRetries = maxRetries
	return c
}

// WithHeader adds a custom header sent with every request.
func (c *Config) WithHeader(key, value string) *Config {
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.Headers[key] = value
	return c
}

// WithRetryStrategy sets a custom retry strategy, replacing the default
// exponential backoff built from RetryConfig.
func (c *Config) WithRetryStrategy(strategy RetryStrategy) *Config {
	c.RetryStrategy = strategy
	return c
}

// WithObserver sets a custom observer for monitoring client operations.
func (c *Config) WithObserver(observer Observer) *Config {
	c.Observer = observer
	return c
}

// Validate validates the configuration and fills defaults for missing
// values. Called automatically by NewClient.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return configError("client ID cannot be empty")
	}
	if c.SecretKey == "" {
		return configError("secret key cannot be empty")
	}
	if c.BaseURL == "" {
		return configError("base URL cannot be empty")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryConfig.MaxRetries < 0 {
		c.RetryConfig.MaxRetries = 0
	}
	if c.RetryConfig.InitialInterval <= 0 {
		c.RetryConfig.InitialInterval = 100 * time.Millisecond
	}
	if c.RetryConfig.MaxInterval <= 0 {
		c.RetryConfig.MaxInterval = 5 * time.Second
	}
	if c.RetryConfig.Multiplier <= 1 {
		c.RetryConfig.Multiplier = 2.0
	}
	if c.RetryConfig.Jitter < 0 || c.RetryConfig.Jitter > 1 {
		c.RetryConfig.Jitter = 0.3
	}
	if c.TransportConfig.MaxIdleConns <= 0 {
		c.TransportConfig.MaxIdleConns = 100
	}
	if c.TransportConfig.MaxConnsPerHost <= 0 {
		c.TransportConfig.MaxConnsPerHost = 10
	}
	if c.TransportConfig.IdleConnTimeout <= 0 {
		c.TransportConfig.IdleConnTimeout = 90 * time.Second
	}
	if c.Observer == nil {
		c.Observer = &NoopObserver{}
	}
	return nil
}

// retryStrategy resolves the effective strategy for this configuration.
func (c *Config) retryStrategy() RetryStrategy {
	if c.RetryStrategy != nil {
		return c.RetryStrategy
	}
	return &ExponentialBackoffStrategy{
		InitialInterval: c.RetryConfig.InitialInterval,
		MaxInterval:     c.RetryConfig.MaxInterval,
		Multiplier:      c.RetryConfig.Multiplier,
		Jitter:          c.RetryConfig.Jitter,
		Budget: RetryBudget{
			// +1 for the initial attempt.
			MaxAttempts: c.RetryConfig.MaxRetries + 1,
		},
	}
}
