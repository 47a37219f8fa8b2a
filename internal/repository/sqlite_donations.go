package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) CreateDonation(ctx context.Context, d *models.Donation) error {
	prepareDonation(d)
	_, err := s.db.ExecContext(ctx, insertDonationSQL, donationArgs(d)...)
	return err
}

// CreateMonetaryDonation moves amount from the donor to the recipient and inserts
// the donation record, all inside one transaction. A failure anywhere rolls the
// whole thing back so the two balances can never drift apart.
func (s *SQLiteDB) CreateMonetaryDonation(ctx context.Context, d *models.Donation, amount decimal.Decimal) error {
	prepareDonation(d)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := adjustBalance(ctx, tx, d.DonorID, amount.Neg()); err != nil {
		return fmt.Errorf("debit donor: %w", err)
	}
	if err := adjustBalance(ctx, tx, d.RecipientID, amount); err != nil {
		return fmt.Errorf("credit recipient: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertDonationSQL, donationArgs(d)...); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteDB) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	if err := adjustBalance(ctx, tx, userID, delta); err != nil {
		return decimal.Zero, err
	}

	var balance string
	if err := tx.QueryRowContext(ctx, `SELECT wallet_balance FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(balance)
}

func adjustBalance(ctx context.Context, tx *sql.Tx, userID string, delta decimal.Decimal) error {
	var balance string
	err := tx.QueryRowContext(ctx, `SELECT wallet_balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if err != nil {
		return err
	}

	current, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("invalid wallet balance for user %s: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET wallet_balance = ? WHERE id = ?`,
		current.Add(delta).String(), userID)
	return err
}

func (s *SQLiteDB) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, donor_id, recipient_id, kind, resource_type, resource_quantity, amount, currency, status, created_at
		FROM donations WHERE id = ?`, id)
	return scanDonation(row)
}

func (s *SQLiteDB) ListDonations(ctx context.Context, opts Filter) ([]models.Donation, error) {
	query := `SELECT id, donor_id, recipient_id, kind, resource_type, resource_quantity, amount, currency, status, created_at
		FROM donations`
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

	var donations []models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, *d)
	}
	return donations, rows.Err()
}

const insertDonationSQL = `
	INSERT INTO donations (id, donor_id, recipient_id, kind, resource_type, resource_quantity, amount, currency, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func prepareDonation(d *models.Donation) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
}

func donationArgs(d *models.Donation) []any {
	var (
		resourceType sql.NullString
		resourceQty  sql.NullInt64
		amount       sql.NullString
		currency     sql.NullString
	)
	if d.Resource != nil {
		resourceType = nullString(d.Resource.ResourceType)
		resourceQty = sql.NullInt64{Int64: int64(d.Resource.Quantity), Valid: true}
	}
	if d.Money != nil {
		amount = nullString(d.Money.Amount.String())
		currency = nullString(d.Money.Currency)
	}
	return []any{d.ID, d.DonorID, d.RecipientID, d.Kind, resourceType, resourceQty, amount, currency, d.Status, d.CreatedAt}
}

func scanDonation(row rowScanner) (*models.Donation, error) {
	var (
		d            models.Donation
		resourceType sql.NullString
		resourceQty  sql.NullInt64
		amount       sql.NullString
		currency     sql.NullString
	)
	err := row.Scan(&d.ID, &d.DonorID, &d.RecipientID, &d.Kind, &resourceType, &resourceQty, &amount, &currency, &d.Status, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	switch d.Kind {
	case models.DonationKindResource:
		d.Resource = &models.ResourceGift{
			ResourceType: resourceType.String,
			Quantity:     int(resourceQty.Int64),
		}
	case models.DonationKindMonetary:
		amt, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("invalid donation amount for %s: %w", d.ID, err)
		}
		d.Money = &models.MonetaryGift{
			Amount:   amt,
			Currency: currency.String,
		}
	}

	return &d, nil
}
