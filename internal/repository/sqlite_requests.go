package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateRequest(ctx context.Context, r *models.ResourceRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resource_requests (id, requester_id, resource_type, quantity, urgency, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequesterID, r.ResourceType, r.Quantity, r.Urgency, r.Description, r.Status, r.CreatedAt)
	return err
}

func (s *SQLiteDB) GetRequest(ctx context.Context, id string) (*models.ResourceRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, requester_id, resource_type, quantity, urgency, description, status, created_at
		FROM resource_requests WHERE id = ?`, id)
	return scanRequest(row)
}

func (s *SQLiteDB) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.ResourceRequest, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE resource_requests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetRequest(ctx, id)
}

func (s *SQLiteDB) ListRequests(ctx context.Context, opts Filter) ([]models.ResourceRequest, error) {
	query := `SELECT id, requester_id, resource_type, quantity, urgency, description, status, created_at
		FROM resource_requests`
	args := []any{}
	where := ""
	if opts.Status != nil {
		where = ` WHERE status = ?`
		args = append(args, *opts.Status)
	}
	if opts.Since != nil {
		if where == "" {
			where = ` WHERE created_at >= ?`
		} else {
			where += ` AND created_at >= ?`
		}
		args = append(args, *opts.Since)
	}
	query += where + ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.ResourceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*models.ResourceRequest, error) {
	var r models.ResourceRequest
	err := row.Scan(&r.ID, &r.RequesterID, &r.ResourceType, &r.Quantity, &r.Urgency, &r.Description, &r.Status, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
