package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChainBalance is a cached on-chain token balance, kept for display only.
// It never feeds the application wallet balance.
type ChainBalance struct {
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	Decimals  int             `json:"decimals"`
	UpdatedAt time.Time       `json:"updated_at"`
}
