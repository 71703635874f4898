package core

import (
	"testing"
	"time"
)

func tx(typ TransactionType, category string, amount float64, day int) Transaction {
	return Transaction{
		Type:     typ,
		Category: category,
		Amount:   amount,
		Date:     time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC),
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx(Income, "Salário", 5000, 1),
		tx(Expense, "Alimentação", 450.50, 3),
		tx(Expense, "Transporte", 120, 5),
		tx(Expense, "Alimentação", 80, 12),
		tx(Investment, "Tesouro", 1000, 15),
		// Outside the month, must be ignored.
		{Type: Expense, Category: "Alimentação", Amount: 999, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	ov := Summarize(txs, 2024, 3)

	if ov.Income != 5000 {
		t.Errorf("Income = %v, want 5000", ov.Income)
	}
	if ov.Expenses != 650.50 {
		t.Errorf("Expenses = %v, want 650.50", ov.Expenses)
	}
	if ov.Invested != 1000 {
		t.Errorf("Invested = %v, want 1000", ov.Invested)
	}
	if ov.Balance != 5000-650.50-1000 {
		t.Errorf("Balance = %v", ov.Balance)
	}
	if ov.Transaction != 5 {
		t.Errorf("Transaction count = %d, want 5", ov.Transaction)
	}

	if len(ov.ByCategory) != 2 {
		t.Fatalf("ByCategory has %d entries, want 2", len(ov.ByCategory))
	}
	if ov.ByCategory[0].Name != "Alimentação" || ov.ByCategory[0].Amount != 530.50 {
		t.Errorf("largest category = %+v, want Alimentação 530.50", ov.ByCategory[0])
	}
}

func TestSummarize_EmptyMonth(t *testing.T) {
	ov := Summarize(nil, 2024, 3)
	if ov.Transaction != 0 || ov.Balance != 0 || len(ov.ByCategory) != 0 {
		t.Fatalf("empty summary not zero: %+v", ov)
	}
}

func TestDailyTrend(t *testing.T) {
	txs := []Transaction{
		tx(Income, "Salário", 5000, 1),
		tx(Expense, "Alimentação", 100, 1),
		tx(Expense, "Alimentação", 50, 31),
	}

	points := DailyTrend(txs, 2024, 3)
	if len(points) != 31 {
		t.Fatalf("March should have 31 points, got %d", len(points))
	}
	if points[0].Income != 5000 || points[0].Expense != 100 {
		t.Errorf("day 1 = %+v", points[0])
	}
	if points[30].Expense != 50 {
		t.Errorf("day 31 = %+v", points[30])
	}
	if points[14].Income != 0 || points[14].Expense != 0 {
		t.Errorf("empty day should be zero: %+v", points[14])
	}
}
