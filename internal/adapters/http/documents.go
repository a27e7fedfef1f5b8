package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// multipartMemoryLimit bounds how much of a multipart body is buffered in
// memory before spilling to disk. The upload size limit itself is enforced
// downstream, against the declared part size.
const multipartMemoryLimit = 16 << 20

func (rt *Router) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter, sort, page, err := parseDocumentQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, svcErr := rt.docs.List(r.Context(), filter, sort, page)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}
	if rt.metrics != nil && !filter.IsZero() {
		rt.metrics.SearchPerformed()
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	input, file, cleanup, err := parseDocumentForm(r, true)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	identity := IdentityFromContext(r.Context())
	uploaderID := ""
	if identity != nil {
		uploaderID = identity.UserID
	}

	doc, svcErr := rt.docs.Create(r.Context(), input, *file, uploaderID)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}
	if rt.metrics != nil {
		rt.metrics.DocumentUploaded()
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	input, file, cleanup, err := parseDocumentForm(r, false)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	doc, svcErr := rt.docs.Update(r.Context(), chi.URLParam(r, "id"), input, file)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.docs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, url, err := rt.docs.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.DocumentDownloaded()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"url":      url,
	})
}

// parseDocumentForm reads the multipart create/update payload. Metadata
// travels as form fields (tags as a JSON array or comma-separated string),
// the file as the "file" part. requireFile distinguishes create from update.
func parseDocumentForm(r *http.Request, requireFile bool) (domain.DocumentInput, *ports.FileUpload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		verr := domain.NewValidationError()
		verr.Add("body", "expected multipart/form-data")
		return domain.DocumentInput{}, nil, noop, verr
	}

	input := domain.DocumentInput{
		Title:           strings.TrimSpace(r.FormValue("title")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		TypeID:          strings.TrimSpace(r.FormValue("type_id")),
		GeneralID:       strings.TrimSpace(r.FormValue("general_id")),
		InternalID:      strings.TrimSpace(r.FormValue("internal_id")),
		Confidentiality: domain.Confidentiality(strings.TrimSpace(r.FormValue("confidentiality"))),
		Tags:            parseTags(r.FormValue("tags")),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if requireFile {
			verr := domain.NewValidationError()
			verr.Add("file", "file is required")
			return domain.DocumentInput{}, nil, noop, verr
		}
		return input, nil, noop, nil
	}

	upload := &ports.FileUpload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Body:     file,
	}
	return input, upload, func() { _ = file.Close() }, nil
}

func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseDocumentQuery(r *http.Request) (domain.DocumentFilter, domain.SortOrder, domain.PageRequest, error) {
	q := r.URL.Query()
	verr := domain.NewValidationError()

	filter := domain.DocumentFilter{
		TypeID:          q.Get("type_id"),
		GeneralID:       q.Get("general_id"),
		InternalID:      q.Get("internal_id"),
		Confidentiality: domain.Confidentiality(q.Get("confidentiality")),
		Term:            q.Get("q"),
		UploaderID:      q.Get("uploader_id"),
		MimeType:        q.Get("mime_type"),
	}
	if filter.Confidentiality != "" && !filter.Confidentiality.Valid() {
		verr.Add("confidentiality", "must be public or internal")
	}

	filter.CreatedFrom = parseTimeParam(q.Get("created_from"), "created_from", verr)
	filter.CreatedTo = parseTimeParam(q.Get("created_to"), "created_to", verr)
	filter.UpdatedFrom = parseTimeParam(q.Get("updated_from"), "updated_from", verr)
	filter.UpdatedTo = parseTimeParam(q.Get("updated_to"), "updated_to", verr)
	filter.SizeMin = parseIntParam(q.Get("size_min"), "size_min", verr)
	filter.SizeMax = parseIntParam(q.Get("size_max"), "size_max", verr)
	filter.DownloadsMin = parseIntParam(q.Get("downloads_min"), "downloads_min", verr)
	filter.DownloadsMax = parseIntParam(q.Get("downloads_max"), "downloads_max", verr)

	sort := domain.DefaultSort()
	if field := strings.TrimSpace(q.Get("sort")); field != "" {
		sort.Field = field
		sort.Descending = strings.EqualFold(q.Get("order"), "desc")
	}

	page := domain.PageRequest{}
	if v := q.Get("page"); v != "" {
		page.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("per_page"); v != "" {
		page.PerPage, _ = strconv.Atoi(v)
	}

	if !verr.Empty() {
		return domain.DocumentFilter{}, domain.SortOrder{}, domain.PageRequest{}, verr
	}
	return filter, sort, page, nil
}

func parseTimeParam(raw, field string, verr *domain.ValidationError) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse("2006-01-02", raw); err != nil {
			verr.Add(field, "must be RFC 3339 or YYYY-MM-DD")
			return nil
		}
	}
	return &t
}

func parseIntParam(raw, field string, verr *domain.ValidationError) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		verr.Add(field, "must be a non-negative integer")
		return nil
	}
	return &n
}
