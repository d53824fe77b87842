// Package render draws dashboard state as styled terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/viewmodel"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const barWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#45475a")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// Money formats an amount in pounds with two decimals.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-£" + d.Abs().StringFixed(2)
	}
	return "£" + d.StringFixed(2)
}

// Dashboard renders the whole dashboard for one snapshot.
func Dashboard(snap domain.DashboardSnapshot, v viewmodel.View) string {
	sections := []string{
		MonthSelector(v),
		Cards(snap, v),
		Progress(snap, v),
		Breakdown(v),
		Trend(snap.SpendingTrendData),
		Transactions(snap.Transactions),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// MonthSelector is the "‹ May 2024 ›" header; arrows are dimmed when there is
// no data in that direction.
func MonthSelector(v viewmodel.View) string {
	prev, next := mutedStyle.Render("‹"), mutedStyle.Render("›")
	if v.CanGoPrevious {
		prev = titleStyle.Render("‹")
	}
	if v.CanGoNext {
		next = titleStyle.Render("›")
	}
	return fmt.Sprintf("%s %s %s", prev, titleStyle.Render(v.MonthLabel), next)
}

// Cards renders the four metric cards side by side.
func Cards(snap domain.DashboardSnapshot, v viewmodel.View) string {
	budget := mutedStyle.Render("Not set")
	if v.BudgetIsSet {
		budget = valueStyle.Render(Money(snap.MonthlyBudget))
	}

	daily := valueStyle.Render(Money(snap.AvgDailySpend))
	if v.TargetIsSet {
		status := okStyle
		word := "under"
		if v.DailySpendStatus == viewmodel.StatusOver {
			status, word = errorStyle, "over"
		}
		daily += "\n" + status.Render(fmt.Sprintf("%s%% %s target %s", v.DailySpendDiffPercentage.StringFixed(1), word, Money(snap.TargetDailySpendPerDay)))
	}

	top := valueStyle.Render(snap.TopCategory.Category)
	if snap.TopCategory.Category != domain.TopCategoryLabelUnknown {
		top += "\n" + mutedStyle.Render(Money(snap.TopCategory.Total))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Spend", valueStyle.Render(Money(snap.TotalSpend))),
		card("Monthly Budget", budget),
		card("Avg Daily Spend", daily),
		card("Top Category", top),
	)
}

func card(label, body string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + body)
}

// Progress renders spend against budget, capped at 100%.
func Progress(snap domain.DashboardSnapshot, v viewmodel.View) string {
	if !v.BudgetIsSet {
		return mutedStyle.Render("Set a monthly budget to track your progress.")
	}

	filled := int(v.SpendPercentage.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).IntPart())
	style := okStyle
	switch {
	case v.OverBudget:
		style = errorStyle
	case v.SpendPercentage.GreaterThanOrEqual(decimal.NewFromInt(80)):
		style = warnStyle
	}
	bar := style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))

	remaining := fmt.Sprintf("%s remaining", Money(v.RemainingBudget))
	if v.OverBudget {
		remaining = errorStyle.Render(fmt.Sprintf("%s over budget", Money(v.RemainingBudget.Neg())))
	}
	return fmt.Sprintf("%s %s%%\n%s of %s · %s",
		bar, v.SpendPercentage.StringFixed(1),
		Money(snap.TotalSpend), Money(snap.MonthlyBudget), remaining)
}

// Breakdown lists each category with its share of the month's spend.
func Breakdown(v viewmodel.View) string {
	if len(v.Categories) == 0 {
		return mutedStyle.Render("No spending recorded for this month yet.")
	}
	lines := []string{headerStyle.Render("Spending by category")}
	for _, c := range v.Categories {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		lines = append(lines, fmt.Sprintf("%s %-14s %10s  (%s%%)", dot, c.Label, Money(c.Total), c.Percentage.StringFixed(1)))
	}
	return strings.Join(lines, "\n")
}

// Trend renders the cumulative spend-vs-target series.
func Trend(points []domain.TrendPoint) string {
	if len(points) == 0 {
		return mutedStyle.Render("No trend data for this month.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Day", "Actual", "Target")
	for _, p := range points {
		actual := Money(p.Actual)
		if p.Actual.GreaterThan(p.Target) && p.Target.IsPositive() {
			actual = errorStyle.Render(actual)
		}
		t.Row(fmt.Sprint(p.Day), actual, Money(p.Target))
	}
	return headerStyle.Render("Spending trend") + "\n" + t.Render()
}

// Transactions renders the transaction table, newest first.
func Transactions(txs []domain.Transaction) string {
	if len(txs) == 0 {
		return mutedStyle.Render("No transactions for this month.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Date", "Merchant", "Category", "Amount")
	for _, tx := range txs {
		cat := lipgloss.NewStyle().Foreground(lipgloss.Color(viewmodel.MetaFor(tx.Category).Color)).Render(string(tx.Category))
		t.Row(fmt.Sprint(tx.ID), tx.Date.String(), tx.MerchantName, cat, Money(tx.Amount))
	}
	return headerStyle.Render("Transactions") + "\n" + t.Render()
}

// Notices renders notices one per line, coloured by level.
func Notices(ns []domain.Notice) string {
	lines := make([]string, 0, len(ns))
	for _, n := range ns {
		style := mutedStyle
		switch n.Level {
		case domain.NoticeSuccess:
			style = okStyle
		case domain.NoticeWarning:
			style = warnStyle
		case domain.NoticeError:
			style = errorStyle
		}
		lines = append(lines, style.Render(n.Message))
	}
	return strings.Join(lines, "\n")
}

// ChatMessage renders one transcript entry.
func ChatMessage(m domain.ChatMessage) string {
	who := titleStyle.Render("BudgetWise")
	if m.Role == domain.ChatRoleUser {
		who = valueStyle.Render("You")
	}
	return fmt.Sprintf("%s: %s", who, m.Content)
}
