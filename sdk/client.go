package sdk

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"sync"
)

// API paths relative to the configured prefix.
const (
	pathValidate = "auth/validate"
	pathInitiate = "payments/initiate"
	pathStatus   = "payments/{0}"
)

// Client is a payment API client. All methods are safe for concurrent use;
// concurrent calls share one credential pair and one advisory rate-limit
// tracker.
//
// Example:
//
//	client, err := sdk.NewClient(sdk.DefaultConfig().
//	    WithCredentials(clientID, secretKey).
//	    WithBaseURL("https://api.paysim.dev"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	intent, err := client.InitiatePayment(ctx, sdk.PaymentRequest{
//	    Amount:      2500,
//	    CallbackURL: "https://shop.example.com/hooks/paysim",
//	})
//	if err != nil {
//	    if sdk.IsRateLimited(err) {
//	        // Inspect client.RateLimit() and back off
//	    }
//	    return err
//	}
//	// Redirect the payer to intent.PaymentURL
type Client interface {
	// ValidateCredentials checks the configured credentials against the
	// API. It returns (false, nil) when the server explicitly rejects
	// them, and a non-nil error for every other failure.
	ValidateCredentials(ctx context.Context) (bool, error)

	// InitiatePayment starts a payment and returns the redirect URL plus
	// the transaction id to poll. Malformed input fails with a validation
	// error before any request is sent.
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentIntent, error)

	// GetPaymentStatus fetches the full transaction record.
	// Returns ErrNotFound (wrapped) for unknown ids.
	GetPaymentStatus(ctx context.Context, transactionID string) (*Transaction, error)

	// RateLimit returns the most recently observed rate-limit window, nil
	// before any response has been seen. Advisory under concurrency.
	RateLimit() *RateLimitState

	// Describe returns the client's diagnostic view: where it points, how
	// it retries, and the last rate-limit window. This is the supported
	// way to inspect the client; there is deliberately no access to the
	// signing internals.
	Describe() Diagnostics

	// Close releases the client's resources. Safe to call multiple times.
	Close() error
}

// Diagnostics is the deliberate diagnostic surface of a client.
type Diagnostics struct {
	BaseURL    string          `json:"base_url"`
	PathPrefix string          `json:"path_prefix"`
	Retry      RetryConfig     `json:"retry"`
	RateLimit  *RateLimitState `json:"rate_limit,omitempty"`
}

// client is the concrete implementation of the Client interface
type client struct {
	transport *httpTransport
	config    *Config
	mu        sync.RWMutex
	closed    bool
}

// NewClient creates a new payment client. The configuration must carry
// credentials; everything else defaults. The credential pair is bound for
// the client's lifetime. Rotate credentials by constructing a new client.
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport, err := newHTTPTransport(config)
	if err != nil {
		return nil, err
	}

	return &client{
		transport: transport,
		config:    config,
	}, nil
}

// ValidateCredentials checks the configured credentials against the API
func (c *client) ValidateCredentials(ctx context.Context) (bool, error) {
	if err := c.checkClosed(); err != nil {
		return false, err
	}

	var resp validateResponse
	err := c.transport.get(ctx, pathValidate, &resp)
	if err != nil {
		var classified *Error
		if errors.As(err, &classified) && classified.Type == ErrorTypeFatal && classified.StatusCode == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}

	return resp.Valid || resp.Account != "", nil
}

// InitiatePayment starts a payment flow
func (c *client) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentIntent, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}

	var intent PaymentIntent
	if err := c.transport.post(ctx, pathInitiate, req, &intent); err != nil {
		return nil, err
	}

	if intent.PaymentURL == "" || intent.TransactionID == "" {
		return nil, NewError(ErrorTypeFatal, "initiate response missing payment_url or transaction_id", nil)
	}
	return &intent, nil
}

// GetPaymentStatus fetches a transaction record
func (c *client) GetPaymentStatus(ctx context.Context, transactionID string) (*Transaction, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	if transactionID == "" {
		return nil, validationError("transaction id cannot be empty")
	}

	var tx Transaction
	if err := c.transport.get(ctx, buildPath(pathStatus, transactionID), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// RateLimit returns the last observed rate-limit window
func (c *client) RateLimit() *RateLimitState {
	return c.transport.rateLimit()
}

// Describe returns the client's diagnostic view
func (c *client) Describe() Diagnostics {
	return Diagnostics{
		BaseURL:    c.transport.baseURL.String(),
		PathPrefix: c.transport.prefix,
		Retry:      c.config.RetryConfig,
		RateLimit:  c.transport.rateLimit(),
	}
}

// Close closes the client and releases resources
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.transport.close()
}

// checkClosed checks if the client is closed
func (c *client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return configError("client is closed")
	}
	return nil
}

// validatePaymentRequest rejects malformed input before anything is signed
// or sent.
func validatePaymentRequest(req PaymentRequest) error {
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return validationError("amount must be a positive number, got %v", req.Amount)
	}
	if err := validateAbsoluteURL("callback URL", req.CallbackURL); err != nil {
		return err
	}
	if req.BackURL != "" {
		if err := validateAbsoluteURL("back URL", req.BackURL); err != nil {
			return err
		}
	}
	return nil
}

func validateAbsoluteURL(name, raw string) error {
	if raw == "" {
		return validationError("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return validationError("%s is not a valid URL: %v", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validationError("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
