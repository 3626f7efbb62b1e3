package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/paysimlabs/paysim-go/internal/telemetry"
)

// SetupMiddleware configures all middleware for the application
func SetupMiddleware(app *fiber.App) {
	// Request ID middleware
	app.Use(requestid.New())

	// Recover middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

// RequestLoggerMiddleware logs completed API requests with structured fields
func RequestLoggerMiddleware() fiber.Handler {
	log := telemetry.WithComponent("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.Locals(requestid.ConfigDefault.ContextKey),
		}
		if err != nil {
			log.WithFields(fields).WithError(err).Warn("request failed")
		} else {
			log.WithFields(fields).Info("request completed")
		}

		return err
	}
}
