package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/render"

	"github.com/spf13/cobra"
)

func newBudgetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "budget <amount>",
		Short: "Set the monthly budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				return a.Dashboard.SetBudget(ctx, amount)
			})
		},
	}
}

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask the assistant about your spending",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := requireOnboarded(ctx, a); err != nil {
					return err
				}
				reply, err := a.Chat.Ask(ctx, question)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.ChatMessage(reply))
				return nil
			})
		},
	}
}
