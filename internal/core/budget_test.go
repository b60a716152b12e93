package core

import "testing"

func TestComputeBudgetKPI(t *testing.T) {
	catID := int64(3)
	b := Budget{
		ID:           1,
		Name:         "Food",
		Amount:       Money{Cents: 10000},
		StartDate:    NewDate(2025, 1, 1),
		EndDate:      NewDate(2025, 1, 31),
		CategoryID:   &catID,
		CategoryName: "Food & Dining",
	}

	kpi := ComputeBudgetKPI(b, Money{Cents: 12000})
	if !kpi.IsExceeded {
		t.Fatalf("expected exceeded")
	}
	if kpi.Remaining.Cents != -2000 {
		t.Fatalf("remaining = %d", kpi.Remaining.Cents)
	}
	if kpi.PercentageUsed != 120 {
		t.Fatalf("percentage = %v", kpi.PercentageUsed)
	}
	if kpi.CategoryName != "Food & Dining" {
		t.Fatalf("category name = %s", kpi.CategoryName)
	}
}

func TestComputeBudgetKPIZeroTarget(t *testing.T) {
	kpi := ComputeBudgetKPI(Budget{Amount: Money{Cents: 0}}, Money{Cents: 500})
	if kpi.PercentageUsed != 0 {
		t.Fatalf("expected percentage 0 for zero target, got %v", kpi.PercentageUsed)
	}
	if !kpi.IsExceeded {
		t.Fatalf("spent over a zero target is exceeded")
	}
	if kpi.CategoryName != AllCategoriesLabel {
		t.Fatalf("category name = %s", kpi.CategoryName)
	}
}

func TestComputeBudgetKPIUnderTarget(t *testing.T) {
	kpi := ComputeBudgetKPI(Budget{Amount: Money{Cents: 20000}}, Money{Cents: 5000})
	if kpi.IsExceeded {
		t.Fatalf("unexpected exceeded")
	}
	if kpi.Remaining.Cents != 15000 {
		t.Fatalf("remaining = %d", kpi.Remaining.Cents)
	}
	if kpi.PercentageUsed != 25 {
		t.Fatalf("percentage = %v", kpi.PercentageUsed)
	}
}

func TestMonthName(t *testing.T) {
	if MonthName(1) != "January" || MonthName(12) != "December" {
		t.Fatalf("unexpected month names")
	}
	if MonthName(0) != "" || MonthName(13) != "" {
		t.Fatalf("out of range should be empty")
	}
}
