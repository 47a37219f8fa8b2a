package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DonationKind string

const (
	DonationKindResource DonationKind = "resource"
	DonationKindMonetary DonationKind = "monetary"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusCompleted, DonationStatusFailed:
		return true
	}
	return false
}

type ResourceGift struct {
	ResourceType string `json:"resource_type"`
	Quantity     int    `json:"quantity"`
}

type MonetaryGift struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Donation is either a resource gift or a monetary gift, never both.
// Kind tells which of the two payloads is set.
type Donation struct {
	ID          string         `json:"id"`
	DonorID     string         `json:"donor_id"`
	RecipientID string         `json:"recipient_id"`
	Kind        DonationKind   `json:"kind"`
	Resource    *ResourceGift  `json:"resource,omitempty"`
	Money       *MonetaryGift  `json:"money,omitempty"`
	Status      DonationStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
