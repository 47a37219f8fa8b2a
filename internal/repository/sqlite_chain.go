package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func (s *SQLiteDB) UpsertChainBalance(ctx context.Context, b *models.ChainBalance) error {
	b.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chain_balances (user_id, symbol, amount, decimals, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, symbol) DO UPDATE SET amount = excluded.amount,
			decimals = excluded.decimals, updated_at = excluded.updated_at`,
		b.UserID, b.Symbol, b.Amount.String(), b.Decimals, b.UpdatedAt)
	return err
}

func (s *SQLiteDB) ListChainBalances(ctx context.Context, userID string) ([]models.ChainBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, symbol, amount, decimals, updated_at
		FROM chain_balances WHERE user_id = ? ORDER BY symbol`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []models.ChainBalance
	for rows.Next() {
		var (
			b      models.ChainBalance
			amount string
		)
		if err := rows.Scan(&b.UserID, &b.Symbol, &amount, &b.Decimals, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid chain balance for user %s: %w", b.UserID, err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
