package httpadapter

import (
	"fmt"
	"net/http"
	"time"
)

func (rt *Router) handleGeneralStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.reports.GeneralProcessStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) handleDocumentsReport(w http.ResponseWriter, r *http.Request) {
	filter, sort, _, err := parseDocumentQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, svcErr := rt.reports.ExportDocumentsXLSX(r.Context(), filter, sort)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}

	filename := fmt.Sprintf("documents_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
