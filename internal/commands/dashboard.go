package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/render"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/spf13/cobra"
)

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	var month string
	var prev, next bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show spending for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				if err := loadMonth(ctx, a, month); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if prev || next {
					dir := service.DirectionNext
					if prev {
						dir = service.DirectionPrevious
					}
					moved, err := a.Dashboard.Navigate(ctx, dir)
					if err != nil && !errors.Is(err, service.ErrSuperseded) {
						return fmt.Errorf("loading %s month: %w", dir, err)
					}
					if !moved {
						fmt.Fprintf(out, "No %s month with data.\n", dir)
					}
				}

				st := a.Dashboard.State()
				fmt.Fprint(out, render.Dashboard(st.Snapshot, st.View))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default: latest with data)")
	cmd.Flags().BoolVar(&prev, "prev", false, "step back one month")
	cmd.Flags().BoolVar(&next, "next", false, "step forward one month")
	cmd.MarkFlagsMutuallyExclusive("prev", "next")

	return cmd
}
