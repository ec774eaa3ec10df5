package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ysemenov/dengi/internal/cli"
	"github.com/ysemenov/dengi/internal/ledger"
	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

const uncategorizedLabel = "uncategorized"

func operationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Record and inspect operations",
	}

	cmd.AddCommand(addOperationCmd())
	cmd.AddCommand(listOperationsCmd())

	return cmd
}

func addOperationCmd() *cobra.Command {
	var categoryName string

	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount>",
		Short: "Record an income or expense operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opType, err := parseOperationType(args[0])
			if err != nil {
				return err
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

			user, account, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			var categoryID *uuid.UUID
			if categoryName != "" {
				categoryID, err = resolveUserCategory(ctx, store, user.ID, categoryName)
				if err != nil {
					return err
				}
			}

			operation, err := ledger.New(store).RecordOperation(ctx, account.ID, opType, amount, categoryID)
			if err != nil {
				var limitErr *ledger.LimitExceededError
				switch {
				case errors.Is(err, ledger.ErrInsufficientFunds):
					return errors.New("insufficient funds on the account")
				case errors.As(err, &limitErr):
					return fmt.Errorf("category limit exhausted, %s remaining", limitErr.Remaining.StringFixed(2))
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Recorded %s of %s", operation.Type, operation.Amount.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryName, "category", "", "category to record the operation under")
	return cmd
}

func listOperationsCmd() *cobra.Command {
	var (
		categoryFlag string
		typeFlag     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations with optional filters and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			typeFilter, err := parseTypeFilter(typeFlag)
			if err != nil {
				return err
			}
			categoryFilter := parseCategoryFilter(categoryFlag)

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			_, account, err := currentUser(ctx, store)
			if err != nil {
				return err
			}

			query := ledger.NewQuery(store)
			operations, err := query.Filtered(ctx, account.ID, categoryFilter, typeFilter)
			if err != nil {
				return err
			}

			if len(operations) == 0 {
				fmt.Println(cli.InfoStyle.Render("No operations match."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Category"))

			for i := range operations {
				op := &operations[i]
				name, nameErr := query.CategoryName(ctx, op.CategoryID)
				if nameErr != nil {
					return nameErr
				}
				if name == "" {
					name = cli.SubtleStyle.Render(uncategorizedLabel)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					op.OccurredAt.Format("2006-01-02 15:04"),
					op.Type,
					op.Amount.StringFixed(2),
					name)
			}
			w.Flush()

			income, err := query.TotalIncome(ctx, account.ID, categoryFilter, typeFilter)
			if err != nil {
				return err
			}
			expense, err := query.TotalExpense(ctx, account.ID, categoryFilter, typeFilter)
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Printf("Total income:  %s\n", income.StringFixed(2))
			fmt.Printf("Total expense: %s\n", expense.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "filter by category name, or 'uncategorized'")
	cmd.Flags().StringVar(&typeFlag, "type", "", "filter by type (income, expense)")
	return cmd
}

// resolveUserCategory looks up one of the user's own categories for
// tagging an operation. The transfer bookkeeping category is reserved
// and cannot be attached by hand.
func resolveUserCategory(ctx context.Context, store service.Storage, userID uuid.UUID, name string) (*uuid.UUID, error) {
	if name == model.TransferCategoryName {
		return nil, fmt.Errorf("category %q is reserved for transfers", model.TransferCategoryName)
	}
	category, err := store.GetCategoryByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q not found", name)
	}
	return &category.ID, nil
}

func parseOperationType(raw string) (model.OperationType, error) {
	switch strings.ToLower(raw) {
	case "income":
		return model.OperationTypeIncome, nil
	case "expense":
		return model.OperationTypeExpense, nil
	default:
		return "", fmt.Errorf("unknown operation type %q (want income or expense)", raw)
	}
}

func parseTypeFilter(raw string) (ledger.TypeFilter, error) {
	if raw == "" {
		return ledger.AllTypes(), nil
	}
	opType, err := parseOperationType(raw)
	if err != nil {
		return ledger.TypeFilter{}, err
	}
	return ledger.OnlyType(opType), nil
}

func parseCategoryFilter(raw string) ledger.CategoryFilter {
	switch raw {
	case "":
		return ledger.AllCategories()
	case uncategorizedLabel:
		return ledger.OnlyUncategorized()
	default:
		return ledger.OnlyCategory(raw)
	}
}
