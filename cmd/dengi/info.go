package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ysemenov/dengi/internal/cli"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current user, account number and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			user, account, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(user.Username))
			fmt.Printf("Account number: %d\n", account.Number)
			fmt.Printf("Balance:        %s\n", account.Balance.StringFixed(2))
			return nil
		},
	}
}
