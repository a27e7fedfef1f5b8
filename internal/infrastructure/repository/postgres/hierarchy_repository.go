package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/intradocs/intradocs/internal/core/domain"
)

// HierarchyRepository persists the three classification levels. The tables
// mirror each other except for the parent column, so each level gets its own
// small set of methods rather than a generic layer.
type HierarchyRepository struct {
	db *sql.DB
}

func NewHierarchyRepository(db *sql.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

func (r *HierarchyRepository) CreateType(ctx context.Context, t *domain.ProcessType) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO process_types (id, name, title, description, icon, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, t.ID, t.Name, t.Title, t.Description, t.Icon, t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert process type: %w", err)
	}
	return nil
}

func (r *HierarchyRepository) GetType(ctx context.Context, id string) (*domain.ProcessType, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, title, description, icon, active, created_at, updated_at
FROM process_types WHERE id = $1
`, id)

	var t domain.ProcessType
	err := row.Scan(&t.ID, &t.Name, &t.Title, &t.Description, &t.Icon, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get process type", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan process type: %w", err)
	}
	return &t, nil
}

func (r *HierarchyRepository) ListTypes(ctx context.Context, activeOnly bool) ([]domain.ProcessType, error) {
	query := `
SELECT id, name, title, description, icon, active, created_at, updated_at
FROM process_types`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query process types: %w", err)
	}
	defer rows.Close()

	out := []domain.ProcessType{}
	for rows.Next() {
		var t domain.ProcessType
		if err := rows.Scan(&t.ID, &t.Name, &t.Title, &t.Description, &t.Icon, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan process type row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *HierarchyRepository) UpdateType(ctx context.Context, t *domain.ProcessType) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE process_types
SET name = $2, title = $3, description = $4, icon = $5, active = $6, updated_at = $7
WHERE id = $1
`, t.ID, t.Name, t.Title, t.Description, t.Icon, t.Active, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update process type: %w", err)
	}
	return requireRow(res, "update process type", t.ID)
}

func (r *HierarchyRepository) DeleteType(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM process_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete process type: %w", err)
	}
	return requireRow(res, "delete process type", id)
}

func (r *HierarchyRepository) CreateGeneral(ctx context.Context, g *domain.GeneralProcess) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO general_processes (id, name, description, icon, sort_order, active, type_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, g.ID, g.Name, g.Description, g.Icon, g.Order, g.Active, g.TypeID, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert general process: %w", err)
	}
	return nil
}

func (r *HierarchyRepository) GetGeneral(ctx context.Context, id string) (*domain.GeneralProcess, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, icon, sort_order, active, type_id, created_at, updated_at
FROM general_processes WHERE id = $1
`, id)

	var g domain.GeneralProcess
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Icon, &g.Order, &g.Active, &g.TypeID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get general process", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan general process: %w", err)
	}
	return &g, nil
}

func (r *HierarchyRepository) ListGeneralsByType(ctx context.Context, typeID string, activeOnly bool) ([]domain.GeneralProcess, error) {
	query := `
SELECT id, name, description, icon, sort_order, active, type_id, created_at, updated_at
FROM general_processes WHERE type_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query, typeID)
	if err != nil {
		return nil, fmt.Errorf("query general processes: %w", err)
	}
	defer rows.Close()

	out := []domain.GeneralProcess{}
	for rows.Next() {
		var g domain.GeneralProcess
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Icon, &g.Order, &g.Active, &g.TypeID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan general process row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *HierarchyRepository) UpdateGeneral(ctx context.Context, g *domain.GeneralProcess) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE general_processes
SET name = $2, description = $3, icon = $4, sort_order = $5, active = $6, type_id = $7, updated_at = $8
WHERE id = $1
`, g.ID, g.Name, g.Description, g.Icon, g.Order, g.Active, g.TypeID, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update general process: %w", err)
	}
	return requireRow(res, "update general process", g.ID)
}

func (r *HierarchyRepository) DeleteGeneral(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM general_processes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete general process: %w", err)
	}
	return requireRow(res, "delete general process", id)
}

func (r *HierarchyRepository) CreateInternal(ctx context.Context, in *domain.InternalProcess) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO internal_processes (id, name, description, icon, sort_order, active, general_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, in.ID, in.Name, in.Description, in.Icon, in.Order, in.Active, in.GeneralID, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert internal process: %w", err)
	}
	return nil
}

func (r *HierarchyRepository) GetInternal(ctx context.Context, id string) (*domain.InternalProcess, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, icon, sort_order, active, general_id, created_at, updated_at
FROM internal_processes WHERE id = $1
`, id)

	var in domain.InternalProcess
	err := row.Scan(&in.ID, &in.Name, &in.Description, &in.Icon, &in.Order, &in.Active, &in.GeneralID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get internal process", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan internal process: %w", err)
	}
	return &in, nil
}

func (r *HierarchyRepository) ListInternalsByGeneral(ctx context.Context, generalID string, activeOnly bool) ([]domain.InternalProcess, error) {
	query := `
SELECT id, name, description, icon, sort_order, active, general_id, created_at, updated_at
FROM internal_processes WHERE general_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query, generalID)
	if err != nil {
		return nil, fmt.Errorf("query internal processes: %w", err)
	}
	defer rows.Close()

	out := []domain.InternalProcess{}
	for rows.Next() {
		var in domain.InternalProcess
		if err := rows.Scan(&in.ID, &in.Name, &in.Description, &in.Icon, &in.Order, &in.Active, &in.GeneralID, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan internal process row: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *HierarchyRepository) UpdateInternal(ctx context.Context, in *domain.InternalProcess) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE internal_processes
SET name = $2, description = $3, icon = $4, sort_order = $5, active = $6, general_id = $7, updated_at = $8
WHERE id = $1
`, in.ID, in.Name, in.Description, in.Icon, in.Order, in.Active, in.GeneralID, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update internal process: %w", err)
	}
	return requireRow(res, "update internal process", in.ID)
}

func (r *HierarchyRepository) DeleteInternal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM internal_processes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete internal process: %w", err)
	}
	return requireRow(res, "delete internal process", id)
}

func (r *HierarchyRepository) CountGenerals(ctx context.Context, typeID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM general_processes WHERE type_id = $1`, typeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count general processes: %w", err)
	}
	return n, nil
}

func (r *HierarchyRepository) CountActiveInternals(ctx context.Context, generalID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM internal_processes WHERE general_id = $1 AND active`, generalID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active internal processes: %w", err)
	}
	return n, nil
}
