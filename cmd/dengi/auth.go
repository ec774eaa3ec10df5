package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ysemenov/dengi/internal/auth"
	"github.com/ysemenov/dengi/internal/cli"
	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/config"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new user and their account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			_, account, err := auth.NewService(store).Register(ctx, args[0], password)
			if err != nil {
				if errors.Is(err, common.ErrUsernameTaken) {
					return fmt.Errorf("username %q is already taken", args[0])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Registered %s with account number %d", args[0], account.Number)))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			user, err := auth.NewService(store).Authenticate(ctx, args[0], password)
			if err != nil {
				return err
			}

			if err := config.SaveSession(user.Username); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Logged in as %s", user.Username)))
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.ClearSession(); err != nil {
				return err
			}
			fmt.Println(cli.InfoStyle.Render("Logged out"))
			return nil
		},
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
