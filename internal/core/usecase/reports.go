package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// exportCap bounds how many rows a single XLSX export may pull; beyond this
// the operator should narrow the filter.
const exportCap = 5000

// ReportUseCase serves the admin dashboard: XLSX exports of the filtered
// document listing and cached per-branch aggregates.
type ReportUseCase struct {
	docs  ports.DocumentRepository
	cache ports.Cache
	log   *slog.Logger
}

func NewReportUseCase(docs ports.DocumentRepository, cache ports.Cache, log *slog.Logger) *ReportUseCase {
	return &ReportUseCase{docs: docs, cache: cache, log: log}
}

func (uc *ReportUseCase) ExportDocumentsXLSX(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder) ([]byte, error) {
	var rows []domain.Document
	for page := 1; len(rows) < exportCap; page++ {
		result, err := uc.docs.Search(ctx, filter, sort, domain.PageRequest{Page: page, PerPage: domain.MaxPerPage})
		if err != nil {
			return nil, fmt.Errorf("collect export rows: %w", err)
		}
		rows = append(rows, result.Items...)
		if page >= result.LastPage {
			break
		}
	}
	if len(rows) > exportCap {
		rows = rows[:exportCap]
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			uc.log.Warn("close_xlsx_failed", "error", err)
		}
	}()

	const sheet = "Documents"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{
		"Title", "Original filename", "Extension", "Mime type", "Size (bytes)",
		"Confidentiality", "Downloads", "Uploader", "Created at", "Updated at",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, doc := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row coordinates: %w", err)
		}
		row := []any{
			doc.Title, doc.OriginalFilename, doc.Extension, doc.MimeType, doc.SizeBytes,
			string(doc.Confidentiality), doc.DownloadCount, doc.UploaderID,
			doc.CreatedAt.Format("2006-01-02 15:04:05"), doc.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (uc *ReportUseCase) GeneralProcessStats(ctx context.Context) ([]domain.GeneralProcessStats, error) {
	v, err := uc.cache.Remember(ctx, keyStats, ttlStats, func(ctx context.Context) (any, error) {
		return uc.docs.StatsByGeneralProcess(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.GeneralProcessStats), nil
}
