package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api")
	api.Use(MetricsMiddleware())
	api.Use(RequestLoggerMiddleware())

	api.Post("/payments", h.CreatePayment)
	api.Get("/payments/:id", h.GetPayment)
	api.Get("/credentials/validate", h.ValidateCredentials)
	api.Get("/diagnostics", h.Diagnostics)

	// Health and metrics endpoints
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Root endpoint with API info
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "paysim-demo",
			"endpoints": fiber.Map{
				"create_payment":       "POST /api/payments",
				"payment_status":       "GET /api/payments/:id",
				"validate_credentials": "GET /api/credentials/validate",
				"diagnostics":          "GET /api/diagnostics",
				"health":               "GET /health",
				"metrics":              "GET /metrics",
			},
		})
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})
}
