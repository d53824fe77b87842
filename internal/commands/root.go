// Package commands implements the budgetwise CLI.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/buildinfo"
	"github.com/boddenberg/budgetwise-bfa-go/internal/config"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	verbose bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "budgetwise",
		Short:   "Track spending against your monthly budget",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(
		newOnboardCommand(opts),
		newDashboardCommand(opts),
		newUploadCommand(opts),
		newAddCommand(opts),
		newCategorizeCommand(opts),
		newDeleteCommand(opts),
		newBudgetCommand(opts),
		newChatCommand(opts),
	)

	return rootCmd
}

// withApp builds the application for one command run, hands it to fn and
// prints whatever notices fn produced.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	_ = config.LoadDotEnv(".env")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := observability.NewCLILogger(opts.verbose)
	defer logger.Sync()

	a, err := app.New(cfg, observability.NewMetrics(), logger)
	if err != nil {
		return fmt.Errorf("starting budgetwise: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing state store", zap.Error(err))
		}
	}()

	runErr := fn(cmd.Context(), a)
	printNotices(cmd.OutOrStdout(), a.Notices.Drain())
	return runErr
}

// requireOnboarded gates everything but onboarding itself.
func requireOnboarded(ctx context.Context, a *app.App) error {
	rec, err := a.Onboarding.Status(ctx)
	if err != nil {
		return err
	}
	if !rec.Complete() {
		return fmt.Errorf("onboarding not finished: run 'budgetwise onboard' first")
	}
	return nil
}

// loadMonth loads the dashboard for a YYYY-MM flag value, or the latest month
// when it is empty.
func loadMonth(ctx context.Context, a *app.App, raw string) error {
	var month domain.Month
	if raw != "" {
		m, err := domain.ParseMonth(raw)
		if err != nil {
			return err
		}
		month = m
	}
	if err := a.Dashboard.Load(ctx, month); err != nil {
		return fmt.Errorf("loading dashboard: %w", err)
	}
	return nil
}

func printNotices(w io.Writer, ns []domain.Notice) {
	if len(ns) == 0 {
		return
	}
	fmt.Fprintln(w, render.Notices(ns))
}
