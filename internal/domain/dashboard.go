package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ============================================================
// Dashboard snapshot
// ============================================================

// TopCategoryLabelUnknown is shown when the backend has no top category for the month.
const TopCategoryLabelUnknown = "N/A"

// CategoryTotal is one slice of the monthly spending breakdown.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// TopCategory is the category with the highest spend in the month.
type TopCategory struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// TrendPoint is one day of the cumulative spend-vs-target series.
type TrendPoint struct {
	Day    int             `json:"day"`
	Actual decimal.Decimal `json:"actual"`
	Target decimal.Decimal `json:"target"`
}

// DashboardSnapshot is the normalized, server-computed aggregate for one month.
// Every field is populated; fallbacks are applied once by NormalizeSnapshot.
type DashboardSnapshot struct {
	TotalSpend             decimal.Decimal `json:"totalSpend"`
	MonthlyBudget          decimal.Decimal `json:"monthlyBudget"`
	AvgDailySpend          decimal.Decimal `json:"avgDailySpend"`
	TargetDailySpendPerDay decimal.Decimal `json:"targetDailySpendPerDay"`
	TopCategory            TopCategory     `json:"topCategory"`
	SpendingBreakdown      []CategoryTotal `json:"spendingBreakdown"`
	Transactions           []Transaction   `json:"transactions"`
	SpendingTrendData      []TrendPoint    `json:"spendingTrendData"`
	SelectedMonth          Month           `json:"selectedMonth"`
	HasPreviousMonthData   bool            `json:"hasPreviousMonthData"`
	HasNextMonthData       bool            `json:"hasNextMonthData"`
}

// DashboardPayload is the raw GET /dashboard-data/ body. Every field is optional.
type DashboardPayload struct {
	TotalSpend             *decimal.Decimal `json:"totalSpend"`
	MonthlyBudget          *decimal.Decimal `json:"monthlyBudget"`
	AvgDailySpend          *decimal.Decimal `json:"avgDailySpend"`
	TargetDailySpendPerDay *decimal.Decimal `json:"targetDailySpendPerDay"`
	TopCategory            *struct {
		Category *string          `json:"category"`
		Total    *decimal.Decimal `json:"total"`
	} `json:"topCategory"`
	SpendingBreakdown []struct {
		Category string           `json:"category"`
		Total    *decimal.Decimal `json:"total"`
	} `json:"spendingBreakdown"`
	Transactions      []Transaction `json:"transactions"`
	SpendingTrendData []struct {
		Day    int              `json:"day"`
		Actual *decimal.Decimal `json:"actual"`
		Target *decimal.Decimal `json:"target"`
	} `json:"spendingTrendData"`
	SelectedMonth        *string `json:"selectedMonth"`
	HasPreviousMonthData *bool   `json:"hasPreviousMonthData"`
	HasNextMonthData     *bool   `json:"hasNextMonthData"`
}

// EmptySnapshot is the snapshot shown before anything has loaded.
func EmptySnapshot(month Month) DashboardSnapshot {
	return DashboardSnapshot{
		TopCategory:       TopCategory{Category: TopCategoryLabelUnknown},
		SpendingBreakdown: []CategoryTotal{},
		Transactions:      []Transaction{},
		SpendingTrendData: []TrendPoint{},
		SelectedMonth:     month,
	}
}

// NormalizeSnapshot applies every display fallback in one place.
// requested is the month that was asked for (zero for "latest").
func NormalizeSnapshot(p DashboardPayload, requested Month) DashboardSnapshot {
	s := EmptySnapshot(requested)

	s.TotalSpend = orZero(p.TotalSpend)
	s.MonthlyBudget = orZero(p.MonthlyBudget)
	if s.MonthlyBudget.IsNegative() {
		s.MonthlyBudget = decimal.Zero
	}
	s.AvgDailySpend = orZero(p.AvgDailySpend)
	s.TargetDailySpendPerDay = orZero(p.TargetDailySpendPerDay)

	if p.TopCategory != nil {
		if p.TopCategory.Category != nil && *p.TopCategory.Category != "" {
			s.TopCategory.Category = *p.TopCategory.Category
		}
		s.TopCategory.Total = orZero(p.TopCategory.Total)
	}

	for _, b := range p.SpendingBreakdown {
		s.SpendingBreakdown = append(s.SpendingBreakdown, CategoryTotal{
			Category: NormalizeCategory(b.Category),
			Total:    orZero(b.Total),
		})
	}

	for _, t := range p.Transactions {
		t.Category = NormalizeCategory(string(t.Category))
		s.Transactions = append(s.Transactions, t)
	}
	sort.SliceStable(s.Transactions, func(i, j int) bool {
		return s.Transactions[i].Date.After(s.Transactions[j].Date.Time)
	})

	for _, pt := range p.SpendingTrendData {
		s.SpendingTrendData = append(s.SpendingTrendData, TrendPoint{
			Day:    pt.Day,
			Actual: orZero(pt.Actual),
			Target: orZero(pt.Target),
		})
	}

	if p.SelectedMonth != nil {
		if m, err := ParseMonth(*p.SelectedMonth); err == nil {
			s.SelectedMonth = m
		}
	}
	if p.HasPreviousMonthData != nil {
		s.HasPreviousMonthData = *p.HasPreviousMonthData
	}
	if p.HasNextMonthData != nil {
		s.HasNextMonthData = *p.HasNextMonthData
	}
	return s
}

// Clone returns a deep copy so callers can never mutate orchestrator state.
func (s DashboardSnapshot) Clone() DashboardSnapshot {
	c := s
	c.SpendingBreakdown = append(make([]CategoryTotal, 0, len(s.SpendingBreakdown)), s.SpendingBreakdown...)
	c.Transactions = append(make([]Transaction, 0, len(s.Transactions)), s.Transactions...)
	c.SpendingTrendData = append(make([]TrendPoint, 0, len(s.SpendingTrendData)), s.SpendingTrendData...)
	return c
}

// FindTransaction returns the index of the transaction with the given id, or -1.
func (s DashboardSnapshot) FindTransaction(id int64) int {
	for i, t := range s.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
