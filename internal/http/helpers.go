package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"forest/internal/core"
	"forest/internal/storage"
)

// pathID parses the {id} segment of a route pattern.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.Validationf("invalid id %q", raw)
	}
	return id, nil
}

// parseExpenseFilter builds the list filter from query parameters.
// Unknown sort fields are left for the storage layer to whitelist.
func parseExpenseFilter(r *http.Request) (storage.ExpenseFilter, error) {
	q := r.URL.Query()
	var f storage.ExpenseFilter

	if v := strings.TrimSpace(q.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, core.Validationf("invalid category_id %q", v)
		}
		f.CategoryID = &id
	}
	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = &d
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.EndDate = &d
	}
	f.SortBy = strings.TrimSpace(q.Get("sort_by"))
	f.SortOrder = strings.TrimSpace(q.Get("sort_order"))

	return f, nil
}

// parseDateRange reads optional start_date/end_date query parameters.
func parseDateRange(r *http.Request) (storage.DateRange, error) {
	q := r.URL.Query()
	var dr storage.DateRange

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return dr, err
		}
		dr.Start = &d
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return dr, err
		}
		dr.End = &d
	}

	return dr, nil
}

// parseYear reads the year query parameter, defaulting to the current year.
func parseYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return 0, core.Validationf("invalid year %q", v)
	}
	return year, nil
}

// parsePositiveInt parses a strictly positive integer.
func parsePositiveInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 1 {
		return 0, core.Validationf("expected a positive integer, got %q", s)
	}
	return v, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
