package http

import (
	"net/http"

	"forest/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	category := core.Category{
		Name:  p.Get("name"),
		Color: p.Get("color"),
		Icon:  p.Get("icon"),
	}
	if err := category.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	created, err := s.storage.CreateCategory(r.Context(), category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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

	category, err := s.storage.GetCategory(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if p.Has("name") {
		category.Name = p.Get("name")
	}
	if p.Has("color") {
		category.Color = p.Get("color")
	}
	if p.Has("icon") {
		category.Icon = p.Get("icon")
	}
	if err := category.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := s.storage.UpdateCategory(r.Context(), *category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.storage.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
