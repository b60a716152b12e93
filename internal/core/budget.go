package core

// BudgetKPI carries the derived spend metrics for one budget.
type BudgetKPI struct {
	BudgetID       int64   `json:"budget_id"`
	BudgetName     string  `json:"budget_name"`
	CategoryID     *int64  `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	BudgetAmount   Money   `json:"budget_amount"`
	TotalSpent     Money   `json:"total_spent"`
	Remaining      Money   `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
	IsExceeded     bool    `json:"is_exceeded"`
	StartDate      Date    `json:"start_date"`
	EndDate        Date    `json:"end_date"`
}

// AllCategoriesLabel names the KPI category slot for budgets not scoped
// to a single category.
const AllCategoriesLabel = "All Categories"

// ComputeBudgetKPI derives spent/remaining/percentage/exceeded for a
// budget given the summed expense amount in its period. A non-positive
// target yields percentage 0 rather than dividing by zero.
func ComputeBudgetKPI(b Budget, spent Money) BudgetKPI {
	kpi := BudgetKPI{
		BudgetID:     b.ID,
		BudgetName:   b.Name,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		BudgetAmount: b.Amount,
		TotalSpent:   spent,
		Remaining:    Money{Cents: b.Amount.Cents - spent.Cents},
		IsExceeded:   spent.Cents > b.Amount.Cents,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
	}
	if kpi.CategoryName == "" {
		kpi.CategoryName = AllCategoriesLabel
	}
	if b.Amount.Cents > 0 {
		kpi.PercentageUsed = float64(spent.Cents) / float64(b.Amount.Cents) * 100.0
	}
	return kpi
}
