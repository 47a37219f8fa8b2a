package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	skills, err := json.Marshal(v.Skills)
	if err != nil {
		return err
	}
	availability, err := json.Marshal(v.Availability)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volunteers (id, user_id, fire_station_id, skills, availability, emergency_contact, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.FireStationID, string(skills), string(availability), v.EmergencyContact, v.Status, v.CreatedAt)
	return err
}

func (s *SQLiteDB) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, fire_station_id, skills, availability, emergency_contact, status, created_at
		FROM volunteers WHERE id = ?`, id)
	return scanVolunteer(row)
}

func (s *SQLiteDB) UpdateVolunteerStatus(ctx context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteers SET status = ? WHERE id = ?`, status, id)
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
	return s.GetVolunteer(ctx, id)
}

func (s *SQLiteDB) ListVolunteers(ctx context.Context, stationID string, opts Filter) ([]models.Volunteer, error) {
	query := `SELECT id, user_id, fire_station_id, skills, availability, emergency_contact, status, created_at
		FROM volunteers`
	args := []any{}
	if stationID != "" {
		query += ` WHERE fire_station_id = ?`
		args = append(args, stationID)
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

	var volunteers []models.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, err
		}
		volunteers = append(volunteers, *v)
	}
	return volunteers, rows.Err()
}

func scanVolunteer(row rowScanner) (*models.Volunteer, error) {
	var (
		v                    models.Volunteer
		skills, availability string
	)
	err := row.Scan(&v.ID, &v.UserID, &v.FireStationID, &skills, &availability, &v.EmergencyContact, &v.Status, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(skills), &v.Skills); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(availability), &v.Availability); err != nil {
		return nil, err
	}
	return &v, nil
}
