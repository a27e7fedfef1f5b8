package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// HierarchyValidator is the slice of the hierarchy service the document flow
// depends on.
type HierarchyValidator interface {
	ValidateHierarchy(ctx context.Context, typeID, generalID, internalID string) error
}

// DocumentUseCase orchestrates document CRUD. Input validation and hierarchy
// validation run before the upload adapter touches storage, so a rejected
// request leaves no partial state behind.
type DocumentUseCase struct {
	repo      ports.DocumentRepository
	validator HierarchyValidator
	uploader  *UploadAdapter
	cache     ports.Cache
	log       *slog.Logger

	now func() time.Time
}

func NewDocumentUseCase(
	repo ports.DocumentRepository,
	validator HierarchyValidator,
	uploader *UploadAdapter,
	cache ports.Cache,
	log *slog.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		repo:      repo,
		validator: validator,
		uploader:  uploader,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

func (uc *DocumentUseCase) List(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder, page domain.PageRequest) (*domain.DocumentPage, error) {
	page = page.Normalize()

	// The unfiltered first page backs the landing screen; serve it
	// read-through. Everything else goes straight to the store.
	if filter.IsZero() && page.Page == 1 && page.PerPage == domain.DefaultPerPage && sort == domain.DefaultSort() {
		v, err := uc.cache.Remember(ctx, keyRecentDocs, ttlRecentDocs, func(ctx context.Context) (any, error) {
			return uc.repo.Search(ctx, filter, sort, page)
		})
		if err != nil {
			return nil, err
		}
		return v.(*domain.DocumentPage), nil
	}
	return uc.repo.Search(ctx, filter, sort, page)
}

func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *DocumentUseCase) Create(ctx context.Context, input domain.DocumentInput, file ports.FileUpload, uploaderID string) (*domain.Document, error) {
	if err := validateDocumentInput(input); err != nil {
		return nil, err
	}
	if err := uc.validator.ValidateHierarchy(ctx, input.TypeID, input.GeneralID, input.InternalID); err != nil {
		return nil, err
	}

	meta, err := uc.uploader.Store(ctx, file)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	doc := &domain.Document{
		ID:               uuid.NewString(),
		Title:            input.Title,
		Description:      input.Description,
		StoredFilename:   meta.StoredName,
		OriginalFilename: meta.OriginalName,
		StoragePath:      meta.Path,
		MimeType:         meta.MimeType,
		SizeBytes:        meta.SizeBytes,
		Extension:        meta.Extension,
		TypeID:           input.TypeID,
		GeneralID:        input.GeneralID,
		InternalID:       input.InternalID,
		Confidentiality:  input.Confidentiality,
		Tags:             normalizeTags(input.Tags),
		UploaderID:       uploaderID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		// The blob is already on disk; drop it so a failed insert does
		// not leak storage.
		if _, rmErr := uc.uploader.Remove(ctx, meta.Path); rmErr != nil {
			uc.log.Warn("orphan_blob_cleanup_failed", "path", meta.Path, "error", rmErr)
		}
		return nil, err
	}

	evict(ctx, uc.cache, uc.log, documentKeys(doc)...)
	return doc, nil
}

func (uc *DocumentUseCase) Update(ctx context.Context, id string, input domain.DocumentInput, file *ports.FileUpload) (*domain.Document, error) {
	if err := validateDocumentInput(input); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reclassified := input.TypeID != existing.TypeID ||
		input.GeneralID != existing.GeneralID ||
		input.InternalID != existing.InternalID
	if reclassified {
		if err := uc.validator.ValidateHierarchy(ctx, input.TypeID, input.GeneralID, input.InternalID); err != nil {
			return nil, err
		}
	}

	// Evict the branch the document is leaving before it moves.
	oldKeys := documentKeys(existing)

	// The prior blob stays in place until the row update commits, so a
	// failed update still points at an existing file.
	var replacedPath string
	if file != nil {
		meta, err := uc.uploader.Store(ctx, *file)
		if err != nil {
			return nil, err
		}
		replacedPath = existing.StoragePath
		existing.StoredFilename = meta.StoredName
		existing.OriginalFilename = meta.OriginalName
		existing.StoragePath = meta.Path
		existing.MimeType = meta.MimeType
		existing.SizeBytes = meta.SizeBytes
		existing.Extension = meta.Extension
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.TypeID = input.TypeID
	existing.GeneralID = input.GeneralID
	existing.InternalID = input.InternalID
	existing.Confidentiality = input.Confidentiality
	existing.Tags = normalizeTags(input.Tags)
	existing.UpdatedAt = uc.now().UTC()

	if err := uc.repo.Update(ctx, existing); err != nil {
		if replacedPath != "" {
			// The row still references the old blob; drop the new one.
			if _, rmErr := uc.uploader.Remove(ctx, existing.StoragePath); rmErr != nil {
				uc.log.Warn("orphan_blob_cleanup_failed", "path", existing.StoragePath, "error", rmErr)
			}
		}
		return nil, err
	}
	if replacedPath != "" {
		if _, rmErr := uc.uploader.Remove(ctx, replacedPath); rmErr != nil {
			uc.log.Warn("replaced_blob_cleanup_failed", "path", replacedPath, "error", rmErr)
		}
	}

	evict(ctx, uc.cache, uc.log, oldKeys...)
	if reclassified {
		evict(ctx, uc.cache, uc.log, documentKeys(existing)...)
	}
	return existing, nil
}

// Delete removes the metadata row first, then the blob best-effort. Deleting
// a document never touches hierarchy nodes.
func (uc *DocumentUseCase) Delete(ctx context.Context, id string) error {
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := uc.uploader.Remove(ctx, existing.StoragePath); err != nil {
		uc.log.Warn("blob_delete_failed", "path", existing.StoragePath, "error", err)
	}
	evict(ctx, uc.cache, uc.log, documentKeys(existing)...)
	return nil
}

// Download resolves a download URL and bumps the counter. The increment is an
// unconditional UPDATE; concurrent downloads may under-count, sequential ones
// never do. URL generation is best-effort with a static-path fallback.
func (uc *DocumentUseCase) Download(ctx context.Context, id string) (*domain.Document, string, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if err := uc.repo.IncrementDownloadCount(ctx, id); err != nil {
		return nil, "", err
	}
	doc.DownloadCount++

	url, err := uc.uploader.URL(ctx, doc.StoragePath)
	if err != nil {
		uc.log.Warn("download_url_failed", "document_id", id, "error", err)
		url = "/files/" + doc.StoragePath
	}
	return doc, url, nil
}

func validateDocumentInput(input domain.DocumentInput) error {
	verr := domain.NewValidationError()
	if strings.TrimSpace(input.Title) == "" {
		verr.Add("title", "title is required")
	}
	if strings.TrimSpace(input.TypeID) == "" {
		verr.Add("type_id", "type_id is required")
	}
	if strings.TrimSpace(input.GeneralID) == "" {
		verr.Add("general_id", "general_id is required")
	}
	if strings.TrimSpace(input.InternalID) == "" {
		verr.Add("internal_id", "internal_id is required")
	}
	if !input.Confidentiality.Valid() {
		verr.Add("confidentiality", fmt.Sprintf("must be %q or %q", domain.ConfidentialityPublic, domain.ConfidentialityInternal))
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
