package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/paysimlabs/paysim-go/internal/telemetry"
	"github.com/paysimlabs/paysim-go/sdk"
)

// Handlers carries the application dependencies for HTTP handlers
type Handlers struct {
	client    sdk.Client
	config    *Config
	log       *logrus.Entry
	startedAt time.Time
	version   string
}

// NewHandlers creates handlers backed by the given payment client
func NewHandlers(client sdk.Client, config *Config, version string) *Handlers {
	return &Handlers{
		client:    client,
		config:    config,
		log:       telemetry.WithComponent("handlers"),
		startedAt: time.Now(),
		version:   version,
	}
}

// CreatePayment handles POST /api/payments
func (h *Handlers) CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
			Kind:  "validation",
		})
	}

	intent, err := h.client.InitiatePayment(c.Context(), sdk.PaymentRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
		BackURL:     req.BackURL,
	})
	recordOperation("initiate_payment", err)
	if err != nil {
		status, resp := mapError(err)
		return c.Status(status).JSON(resp)
	}

	h.log.WithFields(logrus.Fields{
		"transaction_id": intent.TransactionID,
		"amount":         req.Amount,
	}).Info("payment initiated")

	return c.Status(fiber.StatusCreated).JSON(PaymentCreatedResponse{
		TransactionID: intent.TransactionID,
		PaymentURL:    intent.PaymentURL,
	})
}

// GetPayment handles GET /api/payments/:id
func (h *Handlers) GetPayment(c *fiber.Ctx) error {
	id := c.Params("id")

	txn, err := h.client.GetPaymentStatus(c.Context(), id)
	recordOperation("get_payment_status", err)
	if err != nil {
		status, resp := mapError(err)
		return c.Status(status).JSON(resp)
	}

	return c.JSON(PaymentStatusResponse{
		TransactionID: txn.TransactionID,
		Status:        txn.Status,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	})
}

// ValidateCredentials handles GET /api/credentials/validate
func (h *Handlers) ValidateCredentials(c *fiber.Ctx) error {
	valid, err := h.client.ValidateCredentials(c.Context())
	recordOperation("validate_credentials", err)
	if err != nil {
		status, resp := mapError(err)
		return c.Status(status).JSON(resp)
	}

	return c.JSON(CredentialsResponse{Valid: valid})
}

// Diagnostics handles GET /api/diagnostics
func (h *Handlers) Diagnostics(c *fiber.Ctx) error {
	d := h.client.Describe()
	return c.JSON(DiagnosticsResponse{
		BaseURL:    d.BaseURL,
		PathPrefix: d.PathPrefix,
		MaxRetries: d.Retry.MaxRetries,
		RateLimit:  d.RateLimit,
	})
}

// Health handles GET /health
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Service: "paysim-demo",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
