// Package notify turns domain events into per-recipient notification records.
// Fan-out is a side effect of the triggering operation, never a precondition:
// a failed insert for one recipient is logged and the rest still go out.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

type Fanout struct {
	store       repository.Store
	broadcaster *Broadcaster
}

func NewFanout(store repository.Store, broadcaster *Broadcaster) *Fanout {
	return &Fanout{
		store:       store,
		broadcaster: broadcaster,
	}
}

// RequestCreated notifies every NGO plus the residents assigned to the
// requesting station.
func (f *Fanout) RequestCreated(ctx context.Context, req *models.ResourceRequest, requester *models.User) {
	title := fmt.Sprintf("New resource request: %s", req.ResourceType)
	content := fmt.Sprintf("%s requests %d x %s (%s urgency)",
		requester.DisplayName, req.Quantity, req.ResourceType, req.Urgency)

	ngos, err := f.store.ListUsersByRole(ctx, models.RoleNGO)
	if err != nil {
		slog.Error("fan-out recipient lookup failed", "event", "request", "error", err)
		ngos = nil
	}
	residents, err := f.store.ListResidentsByStation(ctx, requester.ID)
	if err != nil {
		slog.Error("fan-out recipient lookup failed", "event", "request", "error", err)
		residents = nil
	}

	f.deliver(ctx, append(ngos, residents...), title, content, models.NotificationTypeRequest)
}

// DonationCreated notifies the donation's recipient.
func (f *Fanout) DonationCreated(ctx context.Context, d *models.Donation, donor *models.User) {
	var detail string
	switch d.Kind {
	case models.DonationKindResource:
		detail = fmt.Sprintf("%d x %s", d.Resource.Quantity, d.Resource.ResourceType)
	case models.DonationKindMonetary:
		detail = fmt.Sprintf("%s %s", d.Money.Amount, d.Money.Currency)
	}
	title := "New donation received"
	content := fmt.Sprintf("%s donated %s", donor.DisplayName, detail)

	recipient, err := f.store.GetUser(ctx, d.RecipientID)
	if err != nil || recipient == nil {
		slog.Error("fan-out recipient lookup failed", "event", "donation", "recipient", d.RecipientID, "error", err)
		return
	}

	f.deliver(ctx, []models.User{*recipient}, title, content, models.NotificationTypeDonation)
}

// VolunteerCreated notifies the fire station the volunteer signed up with.
func (f *Fanout) VolunteerCreated(ctx context.Context, v *models.Volunteer, user *models.User) {
	title := "New volunteer registration"
	content := fmt.Sprintf("%s registered as a volunteer", user.DisplayName)

	station, err := f.store.GetUser(ctx, v.FireStationID)
	if err != nil || station == nil {
		slog.Error("fan-out recipient lookup failed", "event", "volunteer", "station", v.FireStationID, "error", err)
		return
	}

	f.deliver(ctx, []models.User{*station}, title, content, models.NotificationTypeVolunteer)
}

// EmergencyCreated notifies every fire station except the reporter.
func (f *Fanout) EmergencyCreated(ctx context.Context, e *models.Emergency, reporter *models.User) {
	title := fmt.Sprintf("Emergency: %s", e.Title)
	content := fmt.Sprintf("%s reported a %s severity emergency at %s",
		reporter.DisplayName, e.Severity, e.Location)

	stations, err := f.store.ListUsersByRole(ctx, models.RoleFireStation)
	if err != nil {
		slog.Error("fan-out recipient lookup failed", "event", "emergency", "error", err)
		return
	}

	recipients := stations[:0:0]
	for _, s := range stations {
		if s.ID != reporter.ID {
			recipients = append(recipients, s)
		}
	}

	f.deliver(ctx, recipients, title, content, models.NotificationTypeEmergency)
}

func (f *Fanout) deliver(ctx context.Context, recipients []models.User, title, content string, typ models.NotificationType) {
	for _, r := range recipients {
		n := &models.Notification{
			RecipientID: r.ID,
			Title:       title,
			Content:     content,
			Type:        typ,
		}
		if err := f.store.CreateNotification(ctx, n); err != nil {
			slog.Error("notification insert failed", "recipient", r.ID, "type", typ, "error", err)
			continue
		}
		if f.broadcaster != nil {
			f.broadcaster.Broadcast(n)
		}
	}
}
