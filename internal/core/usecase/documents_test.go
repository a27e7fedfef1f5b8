package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

type validatorFunc func(ctx context.Context, typeID, generalID, internalID string) error

func (f validatorFunc) ValidateHierarchy(ctx context.Context, typeID, generalID, internalID string) error {
	return f(ctx, typeID, generalID, internalID)
}

func passValidator() validatorFunc {
	return func(context.Context, string, string, string) error { return nil }
}

func newDocumentTestCase(validator HierarchyValidator) (*DocumentUseCase, *fakeDocumentRepository, *fakeBlobStorage, *fakeCache) {
	repo := newFakeDocumentRepository()
	storage := newFakeBlobStorage()
	cache := &fakeCache{}

	uploader := NewUploadAdapter(storage, "documents")
	uploader.now = func() time.Time { return time.Unix(1700000000, 0) }
	uploader.randName = func(n int) string { return strings.Repeat("a", n) }

	uc := NewDocumentUseCase(repo, validator, uploader, cache, testLogger())
	uc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return uc, repo, storage, cache
}

func validInput() domain.DocumentInput {
	return domain.DocumentInput{
		Title:           "Hiring policy",
		TypeID:          "t1",
		GeneralID:       "g1",
		InternalID:      "i1",
		Confidentiality: domain.ConfidentialityInternal,
		Tags:            []string{"policy", "HR", "policy"},
	}
}

func pdfUpload() ports.FileUpload {
	return ports.FileUpload{
		Filename: "policy.pdf",
		MimeType: "application/pdf",
		Size:     128,
		Body:     strings.NewReader("pdf bytes"),
	}
}

func TestCreateStoresFileAndEvictsBranch(t *testing.T) {
	uc, repo, storage, cache := newDocumentTestCase(passValidator())

	doc, err := uc.Create(context.Background(), validInput(), pdfUpload(), "u1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("document id not assigned")
	}
	if doc.UploaderID != "u1" {
		t.Fatalf("uploader id = %q", doc.UploaderID)
	}
	if got := []string{"policy", "HR"}; len(doc.Tags) != 2 || doc.Tags[0] != got[0] || doc.Tags[1] != got[1] {
		t.Fatalf("tags = %v, duplicates should collapse", doc.Tags)
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Fatal("document row not persisted")
	}
	if _, ok := storage.files[doc.StoragePath]; !ok {
		t.Fatal("blob not written")
	}
	for _, key := range []string{keyRecentDocs, keyStats, keyGeneralStats("g1"), keyGeneralsOfType("t1")} {
		if !cache.forgot(key) {
			t.Fatalf("key %q not evicted, forgotten: %v", key, cache.forgotten)
		}
	}
}

func TestCreateRejectsInvalidInputBeforeValidation(t *testing.T) {
	called := false
	validator := validatorFunc(func(context.Context, string, string, string) error {
		called = true
		return nil
	})
	uc, _, storage, _ := newDocumentTestCase(validator)

	input := validInput()
	input.Title = "  "
	_, err := uc.Create(context.Background(), input, pdfUpload(), "u1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Fatal("hierarchy validation must not run on invalid input")
	}
	if len(storage.ops) != 0 {
		t.Fatalf("storage touched on invalid input: %v", storage.ops)
	}
}

func TestCreateRejectsInconsistentHierarchyBeforeUpload(t *testing.T) {
	validator := validatorFunc(func(context.Context, string, string, string) error {
		return domain.WrapError(domain.ErrInconsistentHierarchy, "validate hierarchy", errors.New("crossed branches"))
	})
	uc, repo, storage, _ := newDocumentTestCase(validator)

	_, err := uc.Create(context.Background(), validInput(), pdfUpload(), "u1")
	if !domain.IsKind(err, domain.ErrInconsistentHierarchy) {
		t.Fatalf("expected ErrInconsistentHierarchy, got %v", err)
	}
	if len(storage.ops) != 0 {
		t.Fatalf("storage touched on rejected hierarchy: %v", storage.ops)
	}
	if len(repo.docs) != 0 {
		t.Fatal("no row should be written")
	}
}

func TestCreateCleansUpBlobWhenInsertFails(t *testing.T) {
	uc, repo, storage, _ := newDocumentTestCase(passValidator())
	repo.createErr = errors.New("insert failed")

	_, err := uc.Create(context.Background(), validInput(), pdfUpload(), "u1")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(storage.files) != 0 {
		t.Fatalf("orphan blob left behind: %v", storage.files)
	}
}

func TestUpdateReclassificationRevalidatesAndEvictsBothBranches(t *testing.T) {
	var validated [][3]string
	validator := validatorFunc(func(_ context.Context, typeID, generalID, internalID string) error {
		validated = append(validated, [3]string{typeID, generalID, internalID})
		return nil
	})
	uc, repo, _, cache := newDocumentTestCase(validator)

	repo.docs["d1"] = &domain.Document{
		ID: "d1", Title: "Hiring policy", StoragePath: "documents/old.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
		Confidentiality: domain.ConfidentialityInternal,
	}

	input := validInput()
	input.TypeID, input.GeneralID, input.InternalID = "t2", "g2", "i2"
	if _, err := uc.Update(context.Background(), "d1", input, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(validated) != 1 || validated[0] != [3]string{"t2", "g2", "i2"} {
		t.Fatalf("validator calls = %v", validated)
	}
	if !cache.forgot(keyGeneralStats("g1")) || !cache.forgot(keyGeneralStats("g2")) {
		t.Fatalf("both branch stats must be evicted, forgotten: %v", cache.forgotten)
	}
}

func TestUpdateWithoutReclassificationSkipsValidation(t *testing.T) {
	called := false
	validator := validatorFunc(func(context.Context, string, string, string) error {
		called = true
		return nil
	})
	uc, repo, _, _ := newDocumentTestCase(validator)

	repo.docs["d1"] = &domain.Document{
		ID: "d1", Title: "Old title", StoragePath: "documents/old.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
		Confidentiality: domain.ConfidentialityInternal,
	}

	updated, err := uc.Update(context.Background(), "d1", validInput(), nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if called {
		t.Fatal("unchanged classification must not re-validate")
	}
	if updated.Title != "Hiring policy" {
		t.Fatalf("title = %q", updated.Title)
	}
}

func TestUpdateReplacingFileRemovesOldBlob(t *testing.T) {
	uc, repo, storage, _ := newDocumentTestCase(passValidator())

	storage.files["documents/old.pdf"] = []byte("old")
	repo.docs["d1"] = &domain.Document{
		ID: "d1", Title: "Hiring policy", StoragePath: "documents/old.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
		Confidentiality: domain.ConfidentialityInternal,
	}

	file := pdfUpload()
	updated, err := uc.Update(context.Background(), "d1", validInput(), &file)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, ok := storage.files["documents/old.pdf"]; ok {
		t.Fatal("replaced blob should be removed")
	}
	if _, ok := storage.files[updated.StoragePath]; !ok {
		t.Fatal("new blob missing")
	}
}

func TestUpdateKeepsOldBlobWhenRowUpdateFails(t *testing.T) {
	uc, repo, storage, _ := newDocumentTestCase(passValidator())
	repo.updateErr = errors.New("update failed")

	storage.files["documents/old.pdf"] = []byte("old")
	repo.docs["d1"] = &domain.Document{
		ID: "d1", Title: "Hiring policy", StoragePath: "documents/old.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
		Confidentiality: domain.ConfidentialityInternal,
	}

	file := pdfUpload()
	if _, err := uc.Update(context.Background(), "d1", validInput(), &file); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := storage.files["documents/old.pdf"]; !ok {
		t.Fatal("row still references the old blob, it must survive a failed update")
	}
	if len(storage.files) != 1 {
		t.Fatalf("replacement blob should be cleaned up, files: %v", storage.files)
	}
}

func TestDeleteRemovesRowThenBlob(t *testing.T) {
	uc, repo, storage, _ := newDocumentTestCase(passValidator())

	storage.files["documents/doc.pdf"] = []byte("x")
	repo.docs["d1"] = &domain.Document{
		ID: "d1", StoragePath: "documents/doc.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
	}

	if err := uc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.docs["d1"]; ok {
		t.Fatal("row should be gone")
	}
	if _, ok := storage.files["documents/doc.pdf"]; ok {
		t.Fatal("blob should be gone")
	}
}

func TestDeleteMissingDocumentReturnsNotFound(t *testing.T) {
	uc, _, _, _ := newDocumentTestCase(passValidator())

	err := uc.Delete(context.Background(), "absent")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadCountsSequentially(t *testing.T) {
	uc, repo, _, _ := newDocumentTestCase(passValidator())

	repo.docs["d1"] = &domain.Document{
		ID: "d1", StoragePath: "documents/doc.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
	}

	doc, url, err := uc.Download(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if doc.DownloadCount != 1 {
		t.Fatalf("download count = %d, want 1", doc.DownloadCount)
	}
	if url != "https://files.example.test/documents/doc.pdf" {
		t.Fatalf("url = %q", url)
	}

	doc, _, err = uc.Download(context.Background(), "d1")
	if err != nil {
		t.Fatalf("second Download() error = %v", err)
	}
	if doc.DownloadCount != 2 {
		t.Fatalf("download count = %d, want 2", doc.DownloadCount)
	}
}

func TestDownloadFallsBackToStaticPath(t *testing.T) {
	uc, repo, storage, _ := newDocumentTestCase(passValidator())
	storage.urlErr = errors.New("presign unavailable")

	repo.docs["d1"] = &domain.Document{
		ID: "d1", StoragePath: "documents/doc.pdf",
		TypeID: "t1", GeneralID: "g1", InternalID: "i1",
	}

	_, url, err := uc.Download(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if url != "/files/documents/doc.pdf" {
		t.Fatalf("url = %q, want static fallback", url)
	}
}

func TestListCachesUnfilteredFirstPageOnly(t *testing.T) {
	uc, _, _, cache := newDocumentTestCase(passValidator())

	_, err := uc.List(context.Background(), domain.DocumentFilter{}, domain.DefaultSort(), domain.PageRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(cache.remembered) != 1 || cache.remembered[0] != keyRecentDocs {
		t.Fatalf("unfiltered first page should read through the cache, got %v", cache.remembered)
	}

	_, err = uc.List(context.Background(), domain.DocumentFilter{Term: "policy"}, domain.DefaultSort(), domain.PageRequest{})
	if err != nil {
		t.Fatalf("filtered List() error = %v", err)
	}
	if len(cache.remembered) != 1 {
		t.Fatalf("filtered listing must bypass the cache, got %v", cache.remembered)
	}
}
