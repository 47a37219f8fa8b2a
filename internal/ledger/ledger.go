// Package ledger applies signed deltas to application wallet balances. These
// balances live in the store and are unrelated to any on-chain token balance.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

type Ledger struct {
	store repository.Store
}

func New(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// Apply adds delta (positive or negative) to the user's wallet balance and
// returns the updated balance. Balances are allowed to go negative; whether
// donors may overdraw is a policy question the ledger does not answer.
func (l *Ledger) Apply(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	return l.store.AdjustWalletBalance(ctx, userID, delta)
}

// Transfer debits the donor, credits the recipient and records the donation in
// a single store transaction, so a mid-transfer failure cannot strand money.
func (l *Ledger) Transfer(ctx context.Context, d *models.Donation, amount decimal.Decimal) error {
	return l.store.CreateMonetaryDonation(ctx, d, amount)
}
