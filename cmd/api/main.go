package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/paysimlabs/paysim-go/internal/telemetry"
	"github.com/paysimlabs/paysim-go/internal/web"
	"github.com/paysimlabs/paysim-go/sdk"
)

const version = "1.0.0"

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := web.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	telemetry.InitLogger(telemetry.Config{
		ServiceName:    "paysim-demo",
		ServiceVersion: version,
		Environment:    os.Getenv("ENVIRONMENT"),
		LogLevel:       cfg.LogLevel,
	})
	logger := telemetry.Logger()

	client, err := sdk.NewClient(web.NewClientConfig(cfg))
	if err != nil {
		logger.WithError(err).Fatal("failed to create payment client")
	}
	defer client.Close()

	app := fiber.New(fiber.Config{
		AppName:               "PaySim Demo",
		ReadTimeout:           cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:          cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})

	web.SetupMiddleware(app)
	web.SetupRoutes(app, web.NewHandlers(client, cfg, version))

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.WithError(err).Error("server forced to shutdown")
		}
	}()

	addr := cfg.Address()
	logger.WithField("addr", addr).Info("paysim demo listening")

	if err := app.Listen(addr); err != nil {
		logger.WithError(err).Fatal("failed to start server")
	}
}
