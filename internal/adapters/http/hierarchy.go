package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intradocs/intradocs/internal/core/domain"
)

func activeOnly(r *http.Request) bool {
	// UI listings default to active entries; admins pass all=true.
	return r.URL.Query().Get("all") != "true"
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		verr := domain.NewValidationError()
		verr.Add("body", "malformed JSON")
		return verr
	}
	return nil
}

func (rt *Router) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := rt.hier.ListTypes(r.Context(), activeOnly(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (rt *Router) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var t domain.ProcessType
	if err := decodeBody(r, &t); err != nil {
		writeError(w, err)
		return
	}
	created, err := rt.hier.CreateType(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	var t domain.ProcessType
	if err := decodeBody(r, &t); err != nil {
		writeError(w, err)
		return
	}
	t.ID = chi.URLParam(r, "id")
	updated, err := rt.hier.UpdateType(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	if err := rt.hier.DeleteType(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleListGenerals(w http.ResponseWriter, r *http.Request) {
	generals, err := rt.hier.ListGeneralsByType(r.Context(), chi.URLParam(r, "typeID"), activeOnly(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generals)
}

func (rt *Router) handleCreateGeneral(w http.ResponseWriter, r *http.Request) {
	var g domain.GeneralProcess
	if err := decodeBody(r, &g); err != nil {
		writeError(w, err)
		return
	}
	created, err := rt.hier.CreateGeneral(r.Context(), g)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateGeneral(w http.ResponseWriter, r *http.Request) {
	var g domain.GeneralProcess
	if err := decodeBody(r, &g); err != nil {
		writeError(w, err)
		return
	}
	g.ID = chi.URLParam(r, "id")
	updated, err := rt.hier.UpdateGeneral(r.Context(), g)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) handleDeleteGeneral(w http.ResponseWriter, r *http.Request) {
	if err := rt.hier.DeleteGeneral(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleListInternals(w http.ResponseWriter, r *http.Request) {
	internals, err := rt.hier.ListInternalsByGeneral(r.Context(), chi.URLParam(r, "generalID"), activeOnly(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, internals)
}

func (rt *Router) handleCreateInternal(w http.ResponseWriter, r *http.Request) {
	var in domain.InternalProcess
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	created, err := rt.hier.CreateInternal(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) handleUpdateInternal(w http.ResponseWriter, r *http.Request) {
	var in domain.InternalProcess
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")
	updated, err := rt.hier.UpdateInternal(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) handleDeleteInternal(w http.ResponseWriter, r *http.Request) {
	if err := rt.hier.DeleteInternal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
