// Package sdk provides a Go client library for the PaySim payment-simulation
// API. It wraps the three API operations behind a small facade and puts all
// the effort into the part that actually matters: getting one signed HTTP
// request through reliably, or failing with a precise, actionable error.
//
// # Features
//
// The SDK provides:
//   - HMAC-SHA256 request signing over the exact transmitted bytes
//   - Automatic retries with exponential backoff and jitter
//   - Server Retry-After hints honored over the computed backoff
//   - Rate-limit window tracking from response headers
//   - A typed error taxonomy (rate-limited, protection challenge,
//     not-found, transient, fatal) usable with errors.Is/As
//   - Context support for cancellation and per-attempt timeouts
//   - Observer hooks for metrics and retry diagnostics
//
// # Basic Usage
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/paysimlabs/paysim-go/sdk"
//	)
//
//	func main() {
//	    client, err := sdk.NewClient(sdk.DefaultConfig().
//	        WithCredentials(os.Getenv("PAYSIM_CLIENT_ID"), os.Getenv("PAYSIM_SECRET_KEY")).
//	        WithBaseURL("https://api.paysim.dev"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    ctx := context.Background()
//
//	    intent, err := client.InitiatePayment(ctx, sdk.PaymentRequest{
//	        Amount:      2500,
//	        Currency:    "XAF",
//	        CallbackURL: "https://shop.example.com/hooks/paysim",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    tx, err := client.GetPaymentStatus(ctx, intent.TransactionID)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("transaction %s is %s", tx.TransactionID, tx.Status)
//	}
//
// # Error Handling
//
// Every failure the client surfaces is classified. Check the kind with the
// helper predicates or reach into the structured error directly:
//
//	_, err := client.GetPaymentStatus(ctx, id)
//	switch {
//	case sdk.IsNotFound(err):
//	    // id was never issued
//	case sdk.IsRateLimited(err):
//	    var perr *sdk.Error
//	    errors.As(err, &perr)
//	    log.Printf("limited, retry after %s", perr.RetryAfter)
//	case sdk.IsChallenge(err):
//	    // The API is behind a browser check; a human has to intervene
//	}
//
// Rate-limited and transient failures are retried automatically before they
// ever reach the caller; validation, configuration, not-found, challenge and
// fatal failures surface immediately.
//
// # Diagnostics
//
// The client exposes its state deliberately rather than through internals:
//
//	d := client.Describe()
//	log.Printf("%s (prefix %q), last window: %+v", d.BaseURL, d.PathPrefix, d.RateLimit)
package sdk
