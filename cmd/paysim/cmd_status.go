package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd creates the status command.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status <transaction-id>",
		Short:   "Fetch the current status of a transaction",
		Args:    cobra.ExactArgs(1),
		Example: `  paysim status txn_0001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			txn, err := client.GetPaymentStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Transaction: %s\n", txn.TransactionID)
			fmt.Printf("Status:      %s\n", txn.Status)
			fmt.Printf("Amount:      %.2f %s\n", txn.Amount, txn.Currency)
			if txn.UpdatedAt != "" {
				fmt.Printf("Updated:     %s\n", txn.UpdatedAt)
			}
			printRateLimit(client)
			return nil
		},
	}
}
