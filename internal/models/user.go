package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleResident    Role = "resident"
	RoleFireStation Role = "fire_station"
	RoleNGO         Role = "ngo"
)

func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleFireStation, RoleNGO:
		return true
	}
	return false
}

// User carries exactly one role profile matching its Role; the other two are nil.
type User struct {
	ID            string              `json:"id"`
	Handle        string              `json:"handle"`
	Role          Role                `json:"role"`
	DisplayName   string              `json:"display_name"`
	PasswordHash  string              `json:"-"`
	WalletBalance decimal.Decimal     `json:"wallet_balance"`
	WalletAddress string              `json:"wallet_address,omitempty"` // chain address, display only
	Resident      *ResidentProfile    `json:"resident,omitempty"`
	FireStation   *FireStationProfile `json:"fire_station,omitempty"`
	NGO           *NGOProfile         `json:"ngo,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type ResidentProfile struct {
	PostalCode    string `json:"postal_code"`
	FireStationID string `json:"fire_station_id,omitempty"` // snapshot from registration, may be empty
}

type FireStationProfile struct {
	RegistrationID  string `json:"registration_id"`
	PostalCodeStart string `json:"postal_code_start"`
	PostalCodeEnd   string `json:"postal_code_end"`
}

type NGOProfile struct {
	RegistrationID string `json:"registration_id"`
	Specialization string `json:"specialization"`
	FireStationID  string `json:"fire_station_id,omitempty"`
}
