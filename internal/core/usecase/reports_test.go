package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/intradocs/intradocs/internal/core/domain"
)

func TestExportDocumentsXLSXWritesHeaderAndRows(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.docs["d1"] = &domain.Document{
		ID: "d1", Title: "Hiring policy", OriginalFilename: "policy.pdf",
		Extension: "pdf", MimeType: "application/pdf", SizeBytes: 2048,
		Confidentiality: domain.ConfidentialityInternal, DownloadCount: 7,
		UploaderID: "u1", CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	uc := NewReportUseCase(repo, &fakeCache{}, testLogger())

	payload, err := uc.ExportDocumentsXLSX(context.Background(), domain.DocumentFilter{}, domain.DefaultSort())
	if err != nil {
		t.Fatalf("ExportDocumentsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one document", len(rows))
	}
	if rows[0][0] != "Title" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "Hiring policy" || rows[1][1] != "policy.pdf" {
		t.Fatalf("data row = %v", rows[1])
	}
}

func TestGeneralProcessStatsReadsThroughCache(t *testing.T) {
	repo := newFakeDocumentRepository()
	cache := &fakeCache{}
	uc := NewReportUseCase(repo, cache, testLogger())

	if _, err := uc.GeneralProcessStats(context.Background()); err != nil {
		t.Fatalf("GeneralProcessStats() error = %v", err)
	}
	if len(cache.remembered) != 1 || cache.remembered[0] != keyStats {
		t.Fatalf("stats should read through the cache, got %v", cache.remembered)
	}
}
