package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"title":"Lunch","amount":12.5,"category_id":3,"flag":true}`
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false, want true")
	}
	if got := p.Get("title"); got != "Lunch" {
		t.Errorf("Get(title) = %q, want %q", got, "Lunch")
	}
	if got := p.Get("amount"); got != "12.5" {
		t.Errorf("Get(amount) = %q, want %q", got, "12.5")
	}
	if got := p.Get("category_id"); got != "3" {
		t.Errorf("Get(category_id) = %q, want %q", got, "3")
	}
	if got := p.Get("flag"); got != "true" {
		t.Errorf("Get(flag) = %q, want %q", got, "true")
	}
	if !p.Has("title") {
		t.Error("Has(title) = false, want true")
	}
	if p.Has("missing") {
		t.Error("Has(missing) = true, want false")
	}
}

func TestRequestBodyParser_JSONNullField(t *testing.T) {
	body := `{"category_id":null}`
	r := httptest.NewRequest(http.MethodPut, "/api/budgets/1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.Has("category_id") {
		t.Error("Has(category_id) = false for explicit null, want true")
	}
	if got := p.Get("category_id"); got != "" {
		t.Errorf("Get(category_id) = %q for explicit null, want empty", got)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	body := "title=Lunch&amount=12.50"
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true, want false")
	}
	if got := p.Get("title"); got != "Lunch" {
		t.Errorf("Get(title) = %q, want %q", got, "Lunch")
	}
	if p.Has("date") {
		t.Error("Has(date) = true, want false")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(""))

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("anything"); got != "" {
		t.Errorf("Get(anything) = %q, want empty", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err == nil {
		t.Error("Parse() error = nil, want error for malformed JSON")
	}
}

func TestRequestBodyParser_GetRawPreservesValue(t *testing.T) {
	body := `{"password":"  p@ss word  "}`
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.GetRaw("password"); got != "  p@ss word  " {
		t.Errorf("GetRaw(password) = %q, want the value untouched", got)
	}
	if got := p.Get("password"); got != "p@ss word" {
		t.Errorf("Get(password) = %q, want trimmed", got)
	}
}

func TestRequestBodyParser_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", "Dinner"); err != nil {
		t.Fatal(err)
	}
	part, err := mw.CreateFormFile("receipts", "bill.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("image bytes")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/expenses", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("title"); got != "Dinner" {
		t.Errorf("Get(title) = %q, want %q", got, "Dinner")
	}
	files := p.Files()
	if len(files) != 1 {
		t.Fatalf("Files() len = %d, want 1", len(files))
	}
	if files[0].Filename != "bill.png" {
		t.Errorf("Files()[0].Filename = %q, want %q", files[0].Filename, "bill.png")
	}
}

func TestRequestBodyParser_SanitizesControlCharacters(t *testing.T) {
	// \u0000 unmarshals to a NUL byte, which Get must strip.
	body := `{"title":"Lun\u0000ch"}`
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r, 1<<20)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("title"); got != "Lunch" {
		t.Errorf("Get(title) = %q, want control characters stripped", got)
	}
}
