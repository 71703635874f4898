package core

import (
	"sort"
	"time"
)

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// MonthOverview is a compact financial summary for a specific year+month.
type MonthOverview struct {
	Year        int
	Month       int // 1-12
	Income      float64
	Expenses    float64
	Invested    float64
	Balance     float64
	ByCategory  []CategoryAmount // expenses only, largest first
	Transaction int              // number of transactions considered
}

// Summarize aggregates the transactions that fall inside the given
// year+month. The input order does not matter.
func Summarize(txs []Transaction, year, month int) MonthOverview {
	ov := MonthOverview{Year: year, Month: month}
	byCat := map[string]float64{}

	for _, tx := range txs {
		if tx.Date.Year() != year || int(tx.Date.Month()) != month {
			continue
		}
		ov.Transaction++
		switch tx.Type {
		case Income:
			ov.Income += tx.Amount
		case Expense:
			ov.Expenses += tx.Amount
			byCat[tx.Category] += tx.Amount
		case Investment:
			ov.Invested += tx.Amount
		}
	}
	ov.Balance = ov.Income - ov.Expenses - ov.Invested

	for name, amount := range byCat {
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		if ov.ByCategory[i].Amount != ov.ByCategory[j].Amount {
			return ov.ByCategory[i].Amount > ov.ByCategory[j].Amount
		}
		return ov.ByCategory[i].Name < ov.ByCategory[j].Name
	})
	return ov
}

// DailyPoint is a per-day aggregate used for trend rendering.
type DailyPoint struct {
	Date    time.Time
	Income  float64
	Expense float64
}

// DailyTrend buckets transactions by day over the given month, returning
// one point per calendar day so charts do not skip empty days.
func DailyTrend(txs []Transaction, year, month int) []DailyPoint {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	points := make([]DailyPoint, days)
	for i := range points {
		points[i].Date = first.AddDate(0, 0, i)
	}
	for _, tx := range txs {
		if tx.Date.Year() != year || int(tx.Date.Month()) != month {
			continue
		}
		i := tx.Date.Day() - 1
		switch tx.Type {
		case Income:
			points[i].Income += tx.Amount
		case Expense:
			points[i].Expense += tx.Amount
		}
	}
	return points
}
