// Package http provides the HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses plus the mapping
// from domain errors to HTTP status codes, so handlers stay uniform.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"forest/internal/core"
	"forest/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Body sets the value to be JSON-encoded into the response.
func (b *JSONResponseBuilder) Body(payload any) *JSONResponseBuilder {
	b.payload = payload
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.payload = map[string]string{"message": msg}
	return b
}

// Error sets an {"error": ...} body.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	b.payload = map[string]string{"error": msg}
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		_ = json.NewEncoder(w).Encode(b.payload)
	}
}

// writeJSON is shorthand for the common success case.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	NewJSONResponse().Status(status).Body(payload).Write(w)
}

// writeDomainError translates a domain error into the HTTP status the API
// promises: validation and conflicts are the caller's fault, missing
// resources are 404, other users' resources are 403, everything else is a
// 500 with a generic body so internals never leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrConflict):
		NewJSONResponse().Status(http.StatusBadRequest).Error(err.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NewJSONResponse().Status(http.StatusNotFound).Error(err.Error()).Write(w)
	case errors.Is(err, core.ErrForbidden):
		NewJSONResponse().Status(http.StatusForbidden).Error("forbidden").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
		NewJSONResponse().Status(http.StatusInternalServerError).Error("internal server error").Write(w)
	}
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).Error(message)
}

// UnauthorizedError creates a 401 Unauthorized error response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusUnauthorized).Error(message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNotFound).Error(message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusInternalServerError).Error(message)
}
