package http

import (
	"net/http"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totals, err := s.storage.MonthlyTotals(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totals, err := s.storage.CategoryTotals(r.Context(), currentUser(r).ID, dr)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary, err := s.storage.Summary(r.Context(), currentUser(r).ID, dr)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
