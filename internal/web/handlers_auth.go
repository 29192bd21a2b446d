package web

import (
	"net/http"
	"strings"

	"statshub-app/internal/apperr"
	"statshub-app/internal/auth"
	"statshub-app/internal/model"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string            `json:"token,omitempty"`
	Profile model.UserProfile `json:"profile"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if s.local == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "sign-up is handled by the identity provider"})
		return
	}
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.local.SignUp(r.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		writeError(w, r, err)
		return
	}
	s.signIn(w, r, http.StatusCreated, req.Email, req.Password)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.local == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "sign-in is handled by the identity provider"})
		return
	}
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.signIn(w, r, http.StatusOK, req.Email, req.Password)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, status int, email, password string) {
	token, identity, err := s.local.SignIn(r.Context(), strings.TrimSpace(email), password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := s.profiles.EnsureProfile(r.Context(), identity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, status, sessionResponse{Token: token, Profile: profile})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if s.local != nil {
		s.local.SignOut(sessionToken(r))
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, apperr.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, session.Profile)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
