package core

// MonthlyTotal is one row of the monthly report: the total spent in a
// calendar month of the requested year.
type MonthlyTotal struct {
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Total     Money  `json:"total"`
}

// CategoryTotal is one row of the per-category report.
type CategoryTotal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Total Money  `json:"total"`
}

// Summary aggregates expenses over an optional date range.
type Summary struct {
	Total   Money     `json:"total"`
	Average Money     `json:"average"`
	Count   int64     `json:"count"`
	Max     Money     `json:"max"`
	Min     Money     `json:"min"`
	Recent  []Expense `json:"recent_expenses"`
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English month name for 1-based month numbers,
// empty for out-of-range input.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
