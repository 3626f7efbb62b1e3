package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paysimlabs/paysim-go/sdk"
)

// payCmd creates the pay command.
func payCmd() *cobra.Command {
	var (
		amount      float64
		currency    string
		callbackURL string
		backURL     string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Initiate a payment and print the checkout URL",
		Example: `  paysim pay --amount 2500 --callback-url https://shop.example.com/hooks/paysim
  paysim pay --amount 10.50 --currency EUR --callback-url https://shop.example.com/hooks/paysim --back-url https://shop.example.com/done`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			intent, err := client.InitiatePayment(cmd.Context(), sdk.PaymentRequest{
				Amount:      amount,
				Currency:    currency,
				CallbackURL: callbackURL,
				BackURL:     backURL,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Transaction: %s\n", intent.TransactionID)
			fmt.Printf("Checkout:    %s\n", intent.PaymentURL)
			printRateLimit(client)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "payment amount (required)")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "ISO 4217 currency code")
	cmd.Flags().StringVar(&callbackURL, "callback-url", "", "webhook URL for the payment notification (required)")
	cmd.Flags().StringVar(&backURL, "back-url", "", "URL the payer returns to")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("callback-url")

	return cmd
}
