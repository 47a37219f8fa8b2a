package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateResource(ctx context.Context, r *models.Resource) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, name, description, quantity, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Description, r.Quantity, r.OwnerID, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *SQLiteDB) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, quantity, owner_id, created_at, updated_at
		FROM resources WHERE id = ?`, id)

	var r models.Resource
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Quantity, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteDB) UpdateResource(ctx context.Context, r *models.Resource) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE resources SET name = ?, description = ?, quantity = ?, updated_at = ?
		WHERE id = ?`,
		r.Name, r.Description, r.Quantity, r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *SQLiteDB) ListResources(ctx context.Context, ownerID string, opts Filter) ([]models.Resource, error) {
	query := `SELECT id, name, description, quantity, owner_id, created_at, updated_at FROM resources`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Quantity, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
