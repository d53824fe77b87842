package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/spf13/cobra"
)

func newOnboardCommand(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "onboard [csv-file]",
		Short: "Set up BudgetWise with your name and a first bank export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) > 0 {
				file = args[0]
			}
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return runOnboard(ctx, a, p, name, file)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "your display name")

	return cmd
}

func runOnboard(ctx context.Context, a *app.App, p *prompter, name, file string) error {
	rec, err := a.Onboarding.Status(ctx)
	if err != nil {
		return err
	}
	if rec.Complete() {
		fmt.Fprintf(p.out, "Welcome back, %s! You're already set up.\n", rec.DisplayName)
		return nil
	}

	if rec.Stage == domain.OnboardingLanding {
		if name == "" {
			if name, err = p.Ask("What should we call you? "); err != nil {
				return err
			}
		}
		if rec, err = a.Onboarding.SubmitName(ctx, name); err != nil {
			return err
		}
	}

	if file == "" {
		if file, err = p.Ask(fmt.Sprintf("Hi %s! Path to your bank CSV export: ", rec.DisplayName)); err != nil {
			return err
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	res, rec, err := a.Onboarding.Upload(ctx, filepath.Base(file), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, res.Summary())
	fmt.Fprintf(p.out, "You're all set, %s. Run 'budgetwise dashboard' to see your spending.\n", rec.DisplayName)
	return nil
}
