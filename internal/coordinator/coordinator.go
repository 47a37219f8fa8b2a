// Package coordinator is the single choke point for state-changing operations.
// Every operation takes the acting user, applies role and payload checks, and
// only then touches the store. Notification fan-out runs after persistence and
// never fails an operation.
package coordinator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/assignment"
	"github.com/reliefgrid/reliefgrid/internal/ledger"
	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

// Notifier fans a domain event out into per-recipient notifications.
// Implementations are best-effort and must swallow per-recipient failures.
type Notifier interface {
	RequestCreated(ctx context.Context, req *models.ResourceRequest, requester *models.User)
	DonationCreated(ctx context.Context, d *models.Donation, donor *models.User)
	VolunteerCreated(ctx context.Context, v *models.Volunteer, user *models.User)
	EmergencyCreated(ctx context.Context, e *models.Emergency, reporter *models.User)
}

// IntentCreator returns an opaque client secret for a monetary amount.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
}

type Coordinator struct {
	store    repository.Store
	ledger   *ledger.Ledger
	notifier Notifier
	payments IntentCreator // nil when no provider is configured
}

func New(store repository.Store, l *ledger.Ledger, notifier Notifier, payments IntentCreator) *Coordinator {
	return &Coordinator{
		store:    store,
		ledger:   l,
		notifier: notifier,
		payments: payments,
	}
}

type RegisterUserInput struct {
	Handle          string
	DisplayName     string
	PasswordHash    string
	Role            models.Role
	WalletAddress   string
	PostalCode      string // residents
	RegistrationID  string // fire stations, NGOs
	PostalCodeStart string // fire stations
	PostalCodeEnd   string // fire stations
	Specialization  string // NGOs
}

// RegisterUser creates a user. Residents get their fire-station assignment
// resolved once against the current roster; the snapshot is not revisited when
// station ranges change later.
func (c *Coordinator) RegisterUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	if in.Handle == "" || in.DisplayName == "" || in.PasswordHash == "" {
		return nil, fmt.Errorf("%w: handle, display name and password are required", ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	u := &models.User{
		Handle:        in.Handle,
		Role:          in.Role,
		DisplayName:   in.DisplayName,
		PasswordHash:  in.PasswordHash,
		WalletBalance: decimal.Zero,
		WalletAddress: in.WalletAddress,
	}

	switch in.Role {
	case models.RoleResident:
		if in.PostalCode == "" {
			return nil, fmt.Errorf("%w: postal code is required for residents", ErrInvalidInput)
		}
		profile := &models.ResidentProfile{PostalCode: in.PostalCode}
		roster, err := c.store.ListUsersByRole(ctx, models.RoleFireStation)
		if err != nil {
			return nil, err
		}
		if station := assignment.Resolve(in.PostalCode, roster); station != nil {
			profile.FireStationID = station.ID
		}
		u.Resident = profile
	case models.RoleFireStation:
		if in.RegistrationID == "" || in.PostalCodeStart == "" || in.PostalCodeEnd == "" {
			return nil, fmt.Errorf("%w: registration id and postal range are required for fire stations", ErrInvalidInput)
		}
		if in.PostalCodeStart > in.PostalCodeEnd {
			return nil, fmt.Errorf("%w: postal range start exceeds end", ErrInvalidInput)
		}
		u.FireStation = &models.FireStationProfile{
			RegistrationID:  in.RegistrationID,
			PostalCodeStart: in.PostalCodeStart,
			PostalCodeEnd:   in.PostalCodeEnd,
		}
	case models.RoleNGO:
		if in.RegistrationID == "" {
			return nil, fmt.Errorf("%w: registration id is required for NGOs", ErrInvalidInput)
		}
		u.NGO = &models.NGOProfile{
			RegistrationID: in.RegistrationID,
			Specialization: in.Specialization,
		}
	}

	if existing, err := c.store.GetUserByHandle(ctx, in.Handle); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: handle %q is taken", ErrInvariantViolation, in.Handle)
	}

	if err := c.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type CreateRequestInput struct {
	ResourceType string
	Quantity     int
	Urgency      models.Urgency
	Description  string
}

func (c *Coordinator) CreateResourceRequest(ctx context.Context, actor *models.User, in CreateRequestInput) (*models.ResourceRequest, error) {
	if actor.Role != models.RoleFireStation {
		return nil, fmt.Errorf("%w: only fire stations can raise resource requests", ErrUnauthorized)
	}
	if in.ResourceType == "" || in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: resource type and a positive quantity are required", ErrInvalidInput)
	}
	if !in.Urgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrInvalidInput, in.Urgency)
	}

	req := &models.ResourceRequest{
		RequesterID:  actor.ID,
		ResourceType: in.ResourceType,
		Quantity:     in.Quantity,
		Urgency:      in.Urgency,
		Description:  in.Description,
		Status:       models.RequestStatusPending,
	}
	if err := c.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	c.notifier.RequestCreated(ctx, req, actor)
	return req, nil
}

func (c *Coordinator) UpdateResourceRequestStatus(ctx context.Context, actor *models.User, id string, status models.RequestStatus) (*models.ResourceRequest, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, status)
	}
	req, err := c.store.UpdateRequestStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request %s", ErrNotFound, id)
	}
	return req, nil
}

type CreateDonationInput struct {
	RecipientID      string
	ResourceType     string
	ResourceQuantity int
	Amount           *decimal.Decimal
	Currency         string
}

// CreateDonation records either a resource gift or a monetary gift. Monetary
// donations move the amount between the two wallet balances and insert the
// donation in one store transaction. The returned client secret is empty
// unless a payment-intent provider is configured.
func (c *Coordinator) CreateDonation(ctx context.Context, actor *models.User, in CreateDonationInput) (*models.Donation, string, error) {
	hasResource := in.ResourceType != "" || in.ResourceQuantity != 0
	hasMoney := in.Amount != nil || in.Currency != ""
	if hasResource == hasMoney {
		return nil, "", fmt.Errorf("%w: a donation is either a resource or an amount, not both or neither", ErrInvariantViolation)
	}

	recipient, err := c.store.GetUser(ctx, in.RecipientID)
	if err != nil {
		return nil, "", err
	}
	if recipient == nil {
		return nil, "", fmt.Errorf("%w: recipient %s", ErrNotFound, in.RecipientID)
	}

	d := &models.Donation{
		DonorID:     actor.ID,
		RecipientID: recipient.ID,
		Status:      models.DonationStatusPending,
	}

	var clientSecret string
	if hasResource {
		if in.ResourceType == "" || in.ResourceQuantity <= 0 {
			return nil, "", fmt.Errorf("%w: resource type and a positive quantity are required", ErrInvalidInput)
		}
		d.Kind = models.DonationKindResource
		d.Resource = &models.ResourceGift{
			ResourceType: in.ResourceType,
			Quantity:     in.ResourceQuantity,
		}
		if err := c.store.CreateDonation(ctx, d); err != nil {
			return nil, "", err
		}
	} else {
		if in.Amount == nil || in.Amount.Sign() <= 0 || in.Currency == "" {
			return nil, "", fmt.Errorf("%w: a positive amount and a currency are required", ErrInvalidInput)
		}
		d.Kind = models.DonationKindMonetary
		d.Money = &models.MonetaryGift{
			Amount:   *in.Amount,
			Currency: in.Currency,
		}
		if c.payments != nil {
			clientSecret, err = c.payments.CreateIntent(ctx, *in.Amount, in.Currency)
			if err != nil {
				return nil, "", err
			}
		}
		if err := c.ledger.Transfer(ctx, d, *in.Amount); err != nil {
			return nil, "", err
		}
	}

	c.notifier.DonationCreated(ctx, d, actor)
	return d, clientSecret, nil
}

type CreateVolunteerInput struct {
	FireStationID    string
	Skills           []string
	Availability     []string
	EmergencyContact string
}

func (c *Coordinator) CreateVolunteer(ctx context.Context, actor *models.User, in CreateVolunteerInput) (*models.Volunteer, error) {
	if actor.Role != models.RoleResident {
		return nil, fmt.Errorf("%w: only residents can register as volunteers", ErrUnauthorized)
	}

	stationID := in.FireStationID
	if stationID == "" && actor.Resident != nil {
		stationID = actor.Resident.FireStationID
	}
	if stationID == "" {
		return nil, fmt.Errorf("%w: no fire station given and none assigned", ErrInvalidInput)
	}

	station, err := c.store.GetUser(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil || station.Role != models.RoleFireStation {
		return nil, fmt.Errorf("%w: fire station %s", ErrNotFound, stationID)
	}

	v := &models.Volunteer{
		UserID:           actor.ID,
		FireStationID:    station.ID,
		Skills:           in.Skills,
		Availability:     in.Availability,
		EmergencyContact: in.EmergencyContact,
		Status:           models.VolunteerStatusActive,
	}
	if err := c.store.CreateVolunteer(ctx, v); err != nil {
		return nil, err
	}

	c.notifier.VolunteerCreated(ctx, v, actor)
	return v, nil
}

func (c *Coordinator) UpdateVolunteerStatus(ctx context.Context, actor *models.User, id string, status models.VolunteerStatus) (*models.Volunteer, error) {
	if actor.Role != models.RoleFireStation {
		return nil, fmt.Errorf("%w: only fire stations can change volunteer status", ErrUnauthorized)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown volunteer status %q", ErrInvalidInput, status)
	}
	v, err := c.store.UpdateVolunteerStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: volunteer %s", ErrNotFound, id)
	}
	return v, nil
}

type CreateEmergencyInput struct {
	Title           string
	Description     string
	Severity        models.Severity
	Location        string
	ResourcesNeeded []string
}

func (c *Coordinator) CreateEmergency(ctx context.Context, actor *models.User, in CreateEmergencyInput) (*models.Emergency, error) {
	if actor.Role != models.RoleFireStation {
		return nil, fmt.Errorf("%w: only fire stations can report emergencies", ErrUnauthorized)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !in.Severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, in.Severity)
	}

	e := &models.Emergency{
		Title:           in.Title,
		Description:     in.Description,
		ReporterID:      actor.ID,
		Severity:        in.Severity,
		Location:        in.Location,
		ResourcesNeeded: in.ResourcesNeeded,
		Status:          models.EmergencyStatusActive,
	}
	if err := c.store.CreateEmergency(ctx, e); err != nil {
		return nil, err
	}

	c.notifier.EmergencyCreated(ctx, e, actor)
	return e, nil
}

func (c *Coordinator) MarkNotificationRead(ctx context.Context, actor *models.User, id string) (*models.Notification, error) {
	n, err := c.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return n, nil
}

type ResourceInput struct {
	Name        string
	Description string
	Quantity    int
}

func (c *Coordinator) CreateResource(ctx context.Context, actor *models.User, in ResourceInput) (*models.Resource, error) {
	if actor.Role != models.RoleFireStation && actor.Role != models.RoleNGO {
		return nil, fmt.Errorf("%w: only fire stations and NGOs manage inventory", ErrUnauthorized)
	}
	if in.Name == "" || in.Quantity < 0 {
		return nil, fmt.Errorf("%w: name is required and quantity cannot be negative", ErrInvalidInput)
	}

	r := &models.Resource{
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		OwnerID:     actor.ID,
	}
	if err := c.store.CreateResource(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Coordinator) UpdateResource(ctx context.Context, actor *models.User, id string, in ResourceInput) (*models.Resource, error) {
	if actor.Role != models.RoleFireStation && actor.Role != models.RoleNGO {
		return nil, fmt.Errorf("%w: only fire stations and NGOs manage inventory", ErrUnauthorized)
	}
	if in.Name == "" || in.Quantity < 0 {
		return nil, fmt.Errorf("%w: name is required and quantity cannot be negative", ErrInvalidInput)
	}

	r, err := c.store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: resource %s", ErrNotFound, id)
	}
	if r.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: resource %s belongs to another user", ErrUnauthorized, id)
	}

	r.Name = in.Name
	r.Description = in.Description
	r.Quantity = in.Quantity
	if err := c.store.UpdateResource(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
