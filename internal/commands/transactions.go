package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"

	"github.com/spf13/cobra"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: "id", Message: fmt.Sprintf("transaction id must be a positive integer, got %q", raw)}
	}
	return id, nil
}

func newUploadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <csv-file>",
		Short: "Import a bank CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()

				// Summary and refresh outcome arrive as notices.
				_, err = a.Dashboard.Upload(ctx, filepath.Base(args[0]), f)
				return err
			})
		},
	}
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	var merchant, amount, date, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.NewTransaction{MerchantName: merchant, Category: domain.Category(category)}
			amt, err := domain.ParseAmount(amount)
			if err != nil {
				return err
			}
			in.Amount = amt
			if in.Date, err = domain.ParseDate(date); err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				tx, err := a.Dashboard.AddTransaction(ctx, in)
				if err != nil {
					return err
				}
				if tx.ID != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Created transaction %d.\n", tx.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name (required)")
	_ = cmd.MarkFlagRequired("merchant")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in pounds (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", string(domain.CategoryUncategorized), "spending category")

	return cmd
}

func newCategorizeCommand(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "categorize <id> <category>",
		Short: "Change the category of a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			category, err := domain.ParseCategory(args[1])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				if err := loadMonth(ctx, a, month); err != nil {
					return err
				}
				return a.Dashboard.UpdateCategory(ctx, id, category)
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month holding the transaction as YYYY-MM (default: latest)")

	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var month string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var confirmer port.Confirmer = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = port.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				if err := loadMonth(ctx, a, month); err != nil {
					return err
				}

				err := a.Dashboard.Delete(ctx, id, confirmer)
				var notConfirmed *domain.ErrConfirmationRequired
				if errors.As(err, &notConfirmed) {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month holding the transaction as YYYY-MM (default: latest)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation question")

	return cmd
}
