package http

import (
	"mime/multipart"
	"net/http"

	"forest/internal/core"
	"forest/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExpenseFilter(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expense, err := s.expenses.GetExpense(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	expense := core.Expense{
		Currency: core.DefaultCurrency,
		Date:     core.Today(),
		UserID:   user.ID,
	}
	if err := applyExpenseFields(&expense, p, true); err != nil {
		writeDomainError(w, r, err)
		return
	}

	uploads, closeFiles, err := receiptUploads(p.Files())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer closeFiles()

	created, err := s.expenses.CreateExpense(r.Context(), expense, uploads)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
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

	// Partial update: start from the stored row, overwrite only the
	// fields the request actually carries.
	expense, err := s.expenses.GetExpense(r.Context(), user.ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := applyExpenseFields(expense, p, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	uploads, closeFiles, err := receiptUploads(p.Files())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer closeFiles()

	updated, err := s.expenses.UpdateExpense(r.Context(), *expense, uploads)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), currentUser(r).ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.expenses.DeleteReceipt(r.Context(), currentUser(r).ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "receipt deleted"})
}

func (s *Server) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	rec, file, err := s.expenses.OpenReceipt(r.Context(), currentUser(r).ID, filename)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `inline; filename="`+rec.OriginalFilename+`"`)
	http.ServeContent(w, r, rec.OriginalFilename, info.ModTime(), file)
}

// applyExpenseFields copies request fields onto the expense. With
// requireAll set, the mandatory fields must be present (create); without
// it, absent fields keep their current values (partial update).
func applyExpenseFields(e *core.Expense, p *RequestBodyParser, requireAll bool) error {
	if p.Has("title") || requireAll {
		e.Title = p.Get("title")
	}
	if p.Has("amount") || requireAll {
		cents, err := core.ParseDecimalToCents(p.Get("amount"))
		if err != nil {
			return err
		}
		e.Amount = core.Money{Cents: cents}
	}
	if p.Has("date") {
		d, err := core.ParseDate(p.Get("date"))
		if err != nil {
			return err
		}
		e.Date = d
	}
	if p.Has("description") {
		e.Description = p.Get("description")
	}
	if p.Has("currency") && p.Get("currency") != "" {
		e.Currency = p.Get("currency")
	}
	if p.Has("category_id") || requireAll {
		id, err := parsePositiveInt(p.Get("category_id"))
		if err != nil {
			return core.Validationf("invalid category_id %q", p.Get("category_id"))
		}
		e.CategoryID = id
	}
	return nil
}

// receiptUploads wraps multipart file headers as service uploads. The
// returned closer releases the opened files once the handler is done.
func receiptUploads(headers []*multipart.FileHeader) ([]services.ReceiptUpload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]services.ReceiptUpload, 0, len(headers))
	for _, h := range headers {
		if h.Filename == "" || h.Size == 0 {
			continue
		}
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, services.ReceiptUpload{Reader: f, Filename: h.Filename})
	}

	return uploads, closeAll, nil
}
