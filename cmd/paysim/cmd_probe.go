package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/paysimlabs/paysim-go/sdk"
)

// probeCmd creates the probe command. It fires a paced sequence of credential
// checks and reports how the API's rate limiting and the client's retry
// behavior interact.
func probeCmd() *cobra.Command {
	var (
		requests int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Fire paced requests to observe rate-limit behavior",
		Example: `  paysim probe --requests 20
  paysim probe --requests 100 --interval 200ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if requests <= 0 {
				return fmt.Errorf("--requests must be positive")
			}

			collector := sdk.NewMetricsCollector()
			client, err := newClient(cmd, collector)
			if err != nil {
				return err
			}
			defer client.Close()

			limiter := rate.NewLimiter(rate.Every(interval), 1)
			ctx := cmd.Context()

			var rateLimited int
			for i := 1; i <= requests; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}

				_, err := client.ValidateCredentials(ctx)
				switch {
				case err == nil:
					fmt.Printf("[%3d/%d] ok\n", i, requests)
				case sdk.IsRateLimited(err):
					rateLimited++
					var apiErr *sdk.Error
					errors.As(err, &apiErr)
					fmt.Printf("[%3d/%d] rate limited (retry after %s)\n", i, requests, apiErr.RetryAfter)
				default:
					return err
				}
			}

			snapshot := collector.Snapshot()
			fmt.Println()
			fmt.Printf("Calls:        %d\n", snapshot["requests"])
			fmt.Printf("Failures:     %d\n", snapshot["failures"])
			fmt.Printf("Retries:      %d\n", snapshot["retries"])
			fmt.Printf("Rate limited: %d\n", rateLimited)
			printRateLimit(client)
			return nil
		},
	}

	cmd.Flags().IntVarP(&requests, "requests", "n", 10, "number of requests to send")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 500*time.Millisecond, "pacing interval between requests")

	return cmd
}
