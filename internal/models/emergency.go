package models

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type EmergencyStatus string

const (
	EmergencyStatusActive   EmergencyStatus = "active"
	EmergencyStatusResolved EmergencyStatus = "resolved"
)

type Emergency struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ReporterID      string          `json:"reporter_id"`
	Severity        Severity        `json:"severity"`
	Location        string          `json:"location"`
	ResourcesNeeded []string        `json:"resources_needed"`
	Status          EmergencyStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
