package http

import (
	"net/http"
	"strconv"
	"strings"

	"forest/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := strings.TrimSpace(r.URL.Query().Get("active_only")); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeDomainError(w, r, core.Validationf("invalid active_only %q", v))
			return
		}
		activeOnly = parsed
	}

	budgets, err := s.budgets.ListBudgets(r.Context(), currentUser(r).ID, activeOnly)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	budget, err := s.budgets.GetBudget(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	budget := core.Budget{
		UserID:   currentUser(r).ID,
		IsActive: true,
	}
	if err := applyBudgetFields(&budget, p); err != nil {
		writeDomainError(w, r, err)
		return
	}

	created, err := s.budgets.CreateBudget(r.Context(), budget)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	budget, err := s.budgets.GetBudget(r.Context(), user.ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := applyBudgetFields(budget, p); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := s.budgets.UpdateBudget(r.Context(), *budget)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.budgets.DeleteBudget(r.Context(), currentUser(r).ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "budget deleted"})
}

func (s *Server) handleBudgetKPI(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	kpi, err := s.budgets.BudgetKPI(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, kpi)
}

func (s *Server) handleAllBudgetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.budgets.AllBudgetKPIs(r.Context(), currentUser(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, kpis)
}

// applyBudgetFields copies request fields onto the budget, leaving absent
// fields untouched so the same code serves create and partial update.
func applyBudgetFields(b *core.Budget, p *RequestBodyParser) error {
	if p.Has("name") {
		b.Name = p.Get("name")
	}
	if p.Has("amount") {
		cents, err := core.ParseDecimalToCents(p.Get("amount"))
		if err != nil {
			return err
		}
		b.Amount = core.Money{Cents: cents}
	}
	if p.Has("start_date") {
		d, err := core.ParseDate(p.Get("start_date"))
		if err != nil {
			return err
		}
		b.StartDate = d
	}
	if p.Has("end_date") {
		d, err := core.ParseDate(p.Get("end_date"))
		if err != nil {
			return err
		}
		b.EndDate = d
	}
	if p.Has("category_id") {
		// Explicit null (or empty) detaches the budget from a category.
		if raw := p.Get("category_id"); raw == "" {
			b.CategoryID = nil
		} else {
			id, err := parsePositiveInt(raw)
			if err != nil {
				return err
			}
			b.CategoryID = &id
		}
	}
	if p.Has("is_active") {
		v, err := strconv.ParseBool(p.Get("is_active"))
		if err != nil {
			return core.Validationf("invalid is_active %q", p.Get("is_active"))
		}
		b.IsActive = v
	}
	return nil
}
