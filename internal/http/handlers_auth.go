package http

import (
	"net/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	user, err := s.auth.Register(r.Context(), p.Get("username"), p.Get("email"), p.GetRaw("password"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Registration logs the user straight in, like the web UI expects.
	_, token, err := s.auth.Login(r.Context(), user.Email, p.GetRaw("password"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful",
		"user":    user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r, s.opts.MaxUploadBytes)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	user, token, err := s.auth.Login(r.Context(), p.Get("email"), p.GetRaw("password"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleAuthStatus serves GET /login and GET /register. The API has no
// server-rendered pages, so these report whether the caller already has a
// live session.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.auth.ResolveSession(r.Context(), cookie.Value); err == nil {
			authenticated = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}
