package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd creates the validate command.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configured API credentials are accepted",
		Example: `  paysim validate
  paysim validate --base-url https://sandbox.paysim.dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			valid, err := client.ValidateCredentials(cmd.Context())
			if err != nil {
				return err
			}

			if valid {
				fmt.Println("Credentials are valid.")
			} else {
				fmt.Println("Credentials were rejected.")
			}
			printRateLimit(client)
			return nil
		},
	}
}
