package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/paysimlabs/paysim-go/sdk"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitConfiguration = 3
	ExitValidation    = 4
	ExitNotFound      = 5
	ExitRateLimited   = 6
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:     "paysim",
		Short:   "Exercise the PaySim payment API from the command line",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().String("base-url", "", "API base URL (defaults to PAYSIM_BASE_URL)")
	rootCmd.PersistentFlags().Int("retries", -1, "max retries per call (defaults to PAYSIM_MAX_RETRIES)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-attempt timeout (defaults to PAYSIM_TIMEOUT_SECONDS)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(payCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(probeCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps classified client errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case sdk.ErrorTypeConfiguration:
			return ExitConfiguration
		case sdk.ErrorTypeValidation:
			return ExitValidation
		case sdk.ErrorTypeNotFound:
			return ExitNotFound
		case sdk.ErrorTypeRateLimited:
			return ExitRateLimited
		}
	}
	return ExitGeneral
}

// newClient builds a client from the environment plus any flag overrides.
func newClient(cmd *cobra.Command, observer sdk.Observer) (sdk.Client, error) {
	config := sdk.DefaultConfig().
		WithCredentials(os.Getenv("PAYSIM_CLIENT_ID"), os.Getenv("PAYSIM_SECRET_KEY"))

	if v := os.Getenv("PAYSIM_BASE_URL"); v != "" {
		config.WithBaseURL(v)
	}
	if v := os.Getenv("PAYSIM_PATH_PREFIX"); v != "" {
		config.WithPathPrefix(v)
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		config.WithBaseURL(v)
	}
	if v, _ := cmd.Flags().GetInt("retries"); v >= 0 {
		config.WithRetries(v)
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		config.WithTimeout(v)
	}
	if observer != nil {
		config.WithObserver(observer)
	}

	return sdk.NewClient(config)
}

// printRateLimit prints the last observed rate-limit window, if any.
func printRateLimit(client sdk.Client) {
	state := client.RateLimit()
	if state == nil {
		return
	}
	fmt.Printf("Rate limit: %d/%d remaining, resets at %s\n",
		state.Remaining, state.Limit, state.ResetTime().Format(time.RFC3339))
}
