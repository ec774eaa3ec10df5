package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ysemenov/dengi/internal/cli"
	"github.com/ysemenov/dengi/internal/ledger"
)

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <recipient-account-number> <amount>",
		Short: "Move money to another account by its number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			recipientNumber, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account number %q", args[0])
			}
			amount, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			_, account, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			outgoing, _, err := ledger.New(store).Transfer(ctx, account.ID, recipientNumber, amount)
			if err != nil {
				switch {
				case errors.Is(err, ledger.ErrRecipientNotFound):
					return fmt.Errorf("no account with number %d", recipientNumber)
				case errors.Is(err, ledger.ErrInsufficientFunds):
					return errors.New("insufficient funds on the account")
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Transferred %s to account %d", outgoing.Amount.StringFixed(2), recipientNumber)))
			return nil
		},
	}
}
