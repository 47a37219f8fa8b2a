package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateEmergency(ctx context.Context, e *models.Emergency) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	needed, err := json.Marshal(e.ResourcesNeeded)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO emergencies (id, title, description, reporter_id, severity, location, resources_needed, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.ReporterID, e.Severity, e.Location, string(needed), e.Status, e.CreatedAt)
	return err
}

func (s *SQLiteDB) GetEmergency(ctx context.Context, id string) (*models.Emergency, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, reporter_id, severity, location, resources_needed, status, created_at
		FROM emergencies WHERE id = ?`, id)
	return scanEmergency(row)
}

func (s *SQLiteDB) ListEmergencies(ctx context.Context, opts Filter) ([]models.Emergency, error) {
	query := `SELECT id, title, description, reporter_id, severity, location, resources_needed, status, created_at
		FROM emergencies`
	args := []any{}
	if opts.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, *opts.Status)
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

	var emergencies []models.Emergency
	for rows.Next() {
		e, err := scanEmergency(rows)
		if err != nil {
			return nil, err
		}
		emergencies = append(emergencies, *e)
	}
	return emergencies, rows.Err()
}

func scanEmergency(row rowScanner) (*models.Emergency, error) {
	var (
		e      models.Emergency
		needed string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ReporterID, &e.Severity, &e.Location, &needed, &e.Status, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(needed), &e.ResourcesNeeded); err != nil {
		return nil, err
	}
	return &e, nil
}
