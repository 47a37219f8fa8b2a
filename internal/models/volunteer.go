package models

import "time"

type VolunteerStatus string

const (
	VolunteerStatusActive   VolunteerStatus = "active"
	VolunteerStatusInactive VolunteerStatus = "inactive"
	VolunteerStatusOnCall   VolunteerStatus = "on_call"
)

func (s VolunteerStatus) Valid() bool {
	switch s {
	case VolunteerStatusActive, VolunteerStatusInactive, VolunteerStatusOnCall:
		return true
	}
	return false
}

type Volunteer struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	FireStationID    string          `json:"fire_station_id"`
	Skills           []string        `json:"skills"`
	Availability     []string        `json:"availability"`
	EmergencyContact string          `json:"emergency_contact"`
	Status           VolunteerStatus `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}
