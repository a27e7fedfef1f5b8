package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/intradocs/intradocs/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `d.id, d.title, d.description, d.stored_filename, d.original_filename, d.storage_path,
d.mime_type, d.size_bytes, d.extension, d.type_id, d.general_id, d.internal_id, d.confidentiality,
d.tags, d.download_count, d.uploader_id, d.created_at, d.updated_at`

// Sort allow-list, API field name to column. Anything else falls back to
// created_at descending without an error.
var sortColumns = map[string]string{
	"title":            "title",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"sizeBytes":        "size_bytes",
	"downloadCount":    "download_count",
	"originalFilename": "original_filename",
	"confidentiality":  "confidentiality",
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, title, description, stored_filename, original_filename, storage_path,
	mime_type, size_bytes, extension, type_id, general_id, internal_id,
	confidentiality, tags, download_count, uploader_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		doc.ID, doc.Title, doc.Description, doc.StoredFilename, doc.OriginalFilename, doc.StoragePath,
		doc.MimeType, doc.SizeBytes, doc.Extension, doc.TypeID, doc.GeneralID, doc.InternalID,
		string(doc.Confidentiality), tagsJSON, doc.DownloadCount, doc.UploaderID, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET title = $2, description = $3, stored_filename = $4, original_filename = $5, storage_path = $6,
	mime_type = $7, size_bytes = $8, extension = $9, type_id = $10, general_id = $11,
	internal_id = $12, confidentiality = $13, tags = $14, updated_at = $15
WHERE id = $1
`,
		doc.ID, doc.Title, doc.Description, doc.StoredFilename, doc.OriginalFilename, doc.StoragePath,
		doc.MimeType, doc.SizeBytes, doc.Extension, doc.TypeID, doc.GeneralID, doc.InternalID,
		string(doc.Confidentiality), tagsJSON, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRow(res, "update document", doc.ID)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(res, "delete document", id)
}

// IncrementDownloadCount is an unconditional increment; it relies on row-level
// locking and may under-count under concurrency, sequentially it is exact.
func (r *DocumentRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return requireRow(res, "increment download count", id)
}

func (r *DocumentRepository) CountByGeneralProcess(ctx context.Context, generalID string) (int64, error) {
	return r.countWhere(ctx, "general_id", generalID)
}

func (r *DocumentRepository) CountByInternalProcess(ctx context.Context, internalID string) (int64, error) {
	return r.countWhere(ctx, "internal_id", internalID)
}

func (r *DocumentRepository) countWhere(ctx context.Context, column, id string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+column+` = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents by %s: %w", column, err)
	}
	return n, nil
}

func (r *DocumentRepository) StatsByGeneralProcess(ctx context.Context) ([]domain.GeneralProcessStats, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT gp.id, gp.name, COUNT(d.id), COALESCE(SUM(d.size_bytes), 0), COALESCE(SUM(d.download_count), 0)
FROM general_processes gp
LEFT JOIN documents d ON d.general_id = gp.id
GROUP BY gp.id, gp.name
ORDER BY gp.name
`)
	if err != nil {
		return nil, fmt.Errorf("query general process stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.GeneralProcessStats
	for rows.Next() {
		var s domain.GeneralProcessStats
		if err := rows.Scan(&s.GeneralID, &s.GeneralName, &s.DocumentCount, &s.TotalBytes, &s.Downloads); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Search composes every requested filter into one statement. Filters are
// AND-ed; free-text tokens are OR-ed across tokens and across fields.
func (r *DocumentRepository) Search(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder, page domain.PageRequest) (*domain.DocumentPage, error) {
	page = page.Normalize()

	conds, args := buildDocumentPredicates(filter)
	whereSQL := ""
	if len(conds) > 0 {
		whereSQL = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents d`+whereSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "created_at"
		sort.Descending = true
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	args = append(args, page.PerPage, (page.Page-1)*page.PerPage)
	query := fmt.Sprintf(
		`SELECT %s FROM documents d%s ORDER BY d.%s %s, d.id ASC LIMIT $%d OFFSET $%d`,
		documentColumns, whereSQL, column, direction, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	items := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		items = append(items, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	lastPage := int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &domain.DocumentPage{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		LastPage: lastPage,
	}, nil
}

func buildDocumentPredicates(f domain.DocumentFilter) ([]string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.TypeID != "" {
		conds = append(conds, "d.type_id = "+arg(f.TypeID))
	}
	if f.GeneralID != "" {
		conds = append(conds, "d.general_id = "+arg(f.GeneralID))
	}
	if f.InternalID != "" {
		conds = append(conds, "d.internal_id = "+arg(f.InternalID))
	}
	if f.Confidentiality != "" {
		conds = append(conds, "d.confidentiality = "+arg(string(f.Confidentiality)))
	}
	if f.UploaderID != "" {
		conds = append(conds, "d.uploader_id = "+arg(f.UploaderID))
	}
	if f.MimeType != "" {
		conds = append(conds, "d.mime_type ILIKE "+arg(likePattern(f.MimeType)))
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "d.created_at >= "+arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		conds = append(conds, "d.created_at <= "+arg(*f.CreatedTo))
	}
	if f.UpdatedFrom != nil {
		conds = append(conds, "d.updated_at >= "+arg(*f.UpdatedFrom))
	}
	if f.UpdatedTo != nil {
		conds = append(conds, "d.updated_at <= "+arg(*f.UpdatedTo))
	}
	if f.SizeMin != nil {
		conds = append(conds, "d.size_bytes >= "+arg(*f.SizeMin))
	}
	if f.SizeMax != nil {
		conds = append(conds, "d.size_bytes <= "+arg(*f.SizeMax))
	}
	if f.DownloadsMin != nil {
		conds = append(conds, "d.download_count >= "+arg(*f.DownloadsMin))
	}
	if f.DownloadsMax != nil {
		conds = append(conds, "d.download_count <= "+arg(*f.DownloadsMax))
	}

	// Recall-oriented free text: any token matching any field matches the
	// document. Tokens shorter than the minimum were already dropped.
	tokens := domain.SearchTokens(f.Term)
	if len(tokens) > 0 {
		groups := make([]string, 0, len(tokens))
		for _, token := range tokens {
			pattern := arg(likePattern(token))
			exact := arg(token)
			groups = append(groups, fmt.Sprintf(
				`(d.title ILIKE %[1]s OR d.description ILIKE %[1]s OR d.original_filename ILIKE %[1]s`+
					` OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(d.tags) AS t(v) WHERE lower(t.v) = lower(%[2]s))`+
					` OR EXISTS (SELECT 1 FROM process_types pt WHERE pt.id = d.type_id AND pt.name ILIKE %[1]s)`+
					` OR EXISTS (SELECT 1 FROM general_processes gp WHERE gp.id = d.general_id AND gp.name ILIKE %[1]s)`+
					` OR EXISTS (SELECT 1 FROM internal_processes ip WHERE ip.id = d.internal_id AND ip.name ILIKE %[1]s))`,
				pattern, exact,
			))
		}
		conds = append(conds, "("+strings.Join(groups, " OR ")+")")
	}

	return conds, args
}

func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsRaw []byte
	var confidentiality string

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Description, &doc.StoredFilename, &doc.OriginalFilename, &doc.StoragePath,
		&doc.MimeType, &doc.SizeBytes, &doc.Extension, &doc.TypeID, &doc.GeneralID, &doc.InternalID,
		&confidentiality, &tagsRaw, &doc.DownloadCount, &doc.UploaderID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	doc.Confidentiality = domain.Confidentiality(confidentiality)
	return &doc, nil
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
