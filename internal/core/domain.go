package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for all dates.
const DateLayout = "2006-01-02"

// DefaultCurrency is used when an expense is created without one.
const DefaultCurrency = "UGX"

var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date, use YYYY-MM-DD", ErrValidation)
	ErrEmptyTitle    = fmt.Errorf("%w: title is required", ErrValidation)
	ErrEmptyName     = fmt.Errorf("%w: name is required", ErrValidation)
)

// Validationf builds an error classified as a validation failure.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

type (
	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Category struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	Expense struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Amount      Money  `json:"amount"`
		Currency    string `json:"currency"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		CategoryID  int64  `json:"category_id"`
		UserID      int64  `json:"-"`

		// Denormalized category display fields and attached receipts,
		// populated on reads.
		CategoryName  string    `json:"category_name"`
		CategoryColor string    `json:"category_color"`
		CategoryIcon  string    `json:"category_icon"`
		Receipts      []Receipt `json:"receipts"`
	}

	Receipt struct {
		ID               int64  `json:"id"`
		Filename         string `json:"filename"`
		OriginalFilename string `json:"original_filename"`
		UploadDate       Date   `json:"upload_date"`
		ExpenseID        int64  `json:"expense_id"`
	}

	Budget struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Amount     Money  `json:"amount"`
		StartDate  Date   `json:"start_date"`
		EndDate    Date   `json:"end_date"`
		CategoryID *int64 `json:"category_id"`
		UserID     int64  `json:"-"`
		IsActive   bool   `json:"is_active"`

		CategoryName string `json:"category_name,omitempty"`
	}
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC day.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as its YYYY-MM-DD text form.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		// Timestamps written by SQLite defaults carry a time part.
		if len(v) > len(DateLayout) {
			v = v[:len(DateLayout)]
		}
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case time.Time:
		*d = Date{Time: v}
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return Validationf("username is required")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Validationf("valid email is required")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return Validationf("name too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 100 {
		return Validationf("title too long (max 100 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.CategoryID <= 0 {
		return Validationf("category_id is required")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return Validationf("start_date and end_date are required")
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return Validationf("end_date must not be before start_date")
	}
	return nil
}
