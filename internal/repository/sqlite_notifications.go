package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, title, content, type, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, n.Title, n.Content, n.Type, n.Read, n.CreatedAt)
	return err
}

func (s *SQLiteDB) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, recipient_id, title, content, type, read, created_at
		FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// MarkNotificationRead is idempotent: marking an already-read notification
// succeeds and leaves it read.
func (s *SQLiteDB) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ?`, id)
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
	return s.GetNotification(ctx, id)
}

func (s *SQLiteDB) ListNotifications(ctx context.Context, recipientID string, opts Filter) ([]models.Notification, error) {
	query := `SELECT id, recipient_id, title, content, type, read, created_at
		FROM notifications WHERE recipient_id = ? ORDER BY created_at DESC`
	args := []any{recipientID}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Content, &n.Type, &n.Read, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
