package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ysemenov/dengi/internal/cli"
	"github.com/ysemenov/dengi/internal/ledger"
	"github.com/ysemenov/dengi/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long:  `List, add, re-limit, and delete the categories expenses are tracked under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(setLimitCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories with limits, spend and remaining budget",
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

			service := ledger.NewCategories(store)
			categories, err := service.List(ctx, user.ID)
			if err != nil {
				return err
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'dengi categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Limit"),
				cli.HeaderStyle.Render("Spent"),
				cli.HeaderStyle.Render("Remaining"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10))

			for _, cat := range categories {
				if cat.Kind == model.CategoryKindTransfer {
					fmt.Fprintf(w, "%s\t%s\t\t\n", cat.Name, cli.SubtleStyle.Render("unlimited"))
					continue
				}

				spent, spentErr := service.Spent(ctx, account.ID, cat.ID)
				if spentErr != nil {
					return spentErr
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cat.Name,
					cat.Limit.StringFixed(2),
					spent.StringFixed(2),
					cat.Remaining(spent).StringFixed(2))
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <limit>",
		Short: "Create a category with an all-time expense limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			limit, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			user, _, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			category, err := ledger.NewCategories(store).Add(ctx, user.ID, args[0], limit)
			if err != nil {
				if errors.Is(err, ledger.ErrDuplicateName) {
					return fmt.Errorf("category %q already exists", args[0])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created category %s with limit %s", category.Name, category.Limit.StringFixed(2))))
			return nil
		},
	}
}

func setLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-limit <name> <limit>",
		Short: "Replace a category's limit",
		Long: `Replace a category's all-time expense limit. Lowering the limit below
the amount already spent is allowed; further expenses in the category
will fail until spend is back under the limit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			limit, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			user, _, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			if err := ledger.NewCategories(store).UpdateLimit(ctx, user.ID, args[0], limit); err != nil {
				if errors.Is(err, ledger.ErrCategoryNotFound) {
					return fmt.Errorf("category %q not found", args[0])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Set limit of %s to %s", args[0], limit.StringFixed(2))))
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long: `Delete a category. Operations already recorded under it are kept and
display as uncategorized from then on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			user, _, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			if err := ledger.NewCategories(store).Delete(ctx, user.ID, args[0]); err != nil {
				if errors.Is(err, ledger.ErrCategoryNotFound) {
					return fmt.Errorf("category %q not found", args[0])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted category %s", args[0])))
			return nil
		},
	}
}

func parseAmountArg(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}
