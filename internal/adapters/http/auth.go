package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := rt.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.LoginAttempt(false)
		}
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.LoginAttempt(true)
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (rt *Router) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rt.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type setUserActiveRequest struct {
	Active bool `json:"active"`
}

func (rt *Router) handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	var req setUserActiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := rt.auth.SetUserActive(r.Context(), chi.URLParam(r, "id"), req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
