// Package viewmodel turns a dashboard snapshot into the numbers a screen shows.
// Everything here is pure and safe to call on any normalized snapshot.
package viewmodel

import (
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// DailyStatus compares average daily spend with the daily target.
type DailyStatus string

const (
	StatusOver  DailyStatus = "over"
	StatusUnder DailyStatus = "under"
)

var hundred = decimal.NewFromInt(100)

// CategoryShare is one breakdown row with its share of the month's spend.
type CategoryShare struct {
	CategoryMeta
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// View is the derived, display-ready form of a snapshot.
type View struct {
	MonthLabel               string          `json:"monthLabel"`
	BudgetIsSet              bool            `json:"budgetIsSet"`
	SpendPercentage          decimal.Decimal `json:"spendPercentage"`
	RemainingBudget          decimal.Decimal `json:"remainingBudget"`
	OverBudget               bool            `json:"overBudget"`
	TargetIsSet              bool            `json:"targetIsSet"`
	DailySpendDiffPercentage decimal.Decimal `json:"dailySpendDiffPercentage"`
	DailySpendStatus         DailyStatus     `json:"dailySpendStatus"`
	Categories               []CategoryShare `json:"categories"`
	CanGoPrevious            bool            `json:"canGoPrevious"`
	CanGoNext                bool            `json:"canGoNext"`
}

// Derive computes the view for s.
func Derive(s domain.DashboardSnapshot) View {
	v := View{
		MonthLabel:               s.SelectedMonth.Label(),
		BudgetIsSet:              BudgetIsSet(s.MonthlyBudget),
		SpendPercentage:          SpendPercentage(s.TotalSpend, s.MonthlyBudget),
		TargetIsSet:              s.TargetDailySpendPerDay.IsPositive(),
		DailySpendDiffPercentage: DailySpendDiffPercentage(s.AvgDailySpend, s.TargetDailySpendPerDay, s.MonthlyBudget),
		DailySpendStatus:         Status(s.AvgDailySpend, s.TargetDailySpendPerDay),
		Categories:               Shares(s.SpendingBreakdown, s.TotalSpend),
		CanGoPrevious:            s.HasPreviousMonthData,
		CanGoNext:                s.HasNextMonthData,
	}
	if v.BudgetIsSet {
		v.RemainingBudget = s.MonthlyBudget.Sub(s.TotalSpend)
		v.OverBudget = s.TotalSpend.GreaterThan(s.MonthlyBudget)
	}
	return v
}

// BudgetIsSet reports whether a budget has been configured.
func BudgetIsSet(budget decimal.Decimal) bool {
	return budget.IsPositive()
}

// SpendPercentage is total/budget as a percentage, clamped to [0, 100].
// It is 0 when no budget is set.
func SpendPercentage(total, budget decimal.Decimal) decimal.Decimal {
	if !BudgetIsSet(budget) {
		return decimal.Zero
	}
	return clampPercent(total.Div(budget).Mul(hundred))
}

// DailySpendDiffPercentage is how far avg is from target, in percent.
// It is 0 unless both a budget and a daily target are set.
func DailySpendDiffPercentage(avg, target, budget decimal.Decimal) decimal.Decimal {
	if !BudgetIsSet(budget) || !target.IsPositive() {
		return decimal.Zero
	}
	return avg.Div(target).Sub(decimal.NewFromInt(1)).Mul(hundred).Abs()
}

// Status is over when avg exceeds target, otherwise under.
func Status(avg, target decimal.Decimal) DailyStatus {
	if avg.GreaterThan(target) {
		return StatusOver
	}
	return StatusUnder
}

// Shares annotates each breakdown row with colour and share of total.
func Shares(breakdown []domain.CategoryTotal, total decimal.Decimal) []CategoryShare {
	out := make([]CategoryShare, 0, len(breakdown))
	for _, b := range breakdown {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = b.Total.Div(total).Mul(hundred)
		}
		out = append(out, CategoryShare{
			CategoryMeta: MetaFor(b.Category),
			Total:        b.Total,
			Percentage:   pct,
		})
	}
	return out
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
