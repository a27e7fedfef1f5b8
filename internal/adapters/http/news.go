package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intradocs/intradocs/internal/core/domain"
)

func (rt *Router) handleListNews(w http.ResponseWriter, r *http.Request) {
	items, err := rt.news.List(r.Context(), activeOnly(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (rt *Router) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	var n domain.News
	if err := decodeBody(r, &n); err != nil {
		writeError(w, err)
		return
	}
	created, err := rt.news.Create(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateNews(w http.ResponseWriter, r *http.Request) {
	var n domain.News
	if err := decodeBody(r, &n); err != nil {
		writeError(w, err)
		return
	}
	n.ID = chi.URLParam(r, "id")
	updated, err := rt.news.Update(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := rt.news.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
