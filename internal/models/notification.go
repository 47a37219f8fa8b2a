package models

import "time"

type NotificationType string

const (
	NotificationTypeRequest   NotificationType = "request"
	NotificationTypeDonation  NotificationType = "donation"
	NotificationTypeEmergency NotificationType = "emergency"
	NotificationTypeVolunteer NotificationType = "volunteer"
)

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
