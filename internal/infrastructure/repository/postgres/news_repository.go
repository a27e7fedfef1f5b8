package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/intradocs/intradocs/internal/core/domain"
)

type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Create(ctx context.Context, n *domain.News) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO news (id, title, subtitle, published_at, document_id, external_url, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, n.ID, n.Title, n.Subtitle, n.PublishedAt, nullable(n.DocumentID), n.ExternalURL, n.Active, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

func (r *NewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, subtitle, published_at, document_id, external_url, active, created_at, updated_at
FROM news WHERE id = $1
`, id)
	return scanNews(row)
}

func (r *NewsRepository) List(ctx context.Context, activeOnly bool) ([]domain.News, error) {
	query := `
SELECT id, title, subtitle, published_at, document_id, external_url, active, created_at, updated_at
FROM news`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY published_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	out := []domain.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NewsRepository) Update(ctx context.Context, n *domain.News) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE news
SET title = $2, subtitle = $3, published_at = $4, document_id = $5, external_url = $6, active = $7, updated_at = $8
WHERE id = $1
`, n.ID, n.Title, n.Subtitle, n.PublishedAt, nullable(n.DocumentID), n.ExternalURL, n.Active, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return requireRow(res, "update news", n.ID)
}

func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return requireRow(res, "delete news", id)
}

func scanNews(row rowScanner) (*domain.News, error) {
	var n domain.News
	var documentID sql.NullString

	err := row.Scan(&n.ID, &n.Title, &n.Subtitle, &n.PublishedAt, &documentID, &n.ExternalURL, &n.Active, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get news", fmt.Errorf("no such entry"))
		}
		return nil, fmt.Errorf("scan news: %w", err)
	}
	n.DocumentID = documentID.String
	return &n, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
