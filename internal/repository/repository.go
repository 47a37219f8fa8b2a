package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

type Filter struct {
	Limit  int
	Offset int
	Since  *time.Time
	Status *string
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	ListResidentsByStation(ctx context.Context, stationID string) ([]models.User, error)
	ListUsersWithWalletAddress(ctx context.Context) ([]models.User, error)
	// AdjustWalletBalance adds delta to the user's wallet balance atomically
	// and returns the updated balance.
	AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)
}

type ResourceRepository interface {
	CreateResource(ctx context.Context, r *models.Resource) error
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	UpdateResource(ctx context.Context, r *models.Resource) error
	ListResources(ctx context.Context, ownerID string, opts Filter) ([]models.Resource, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, r *models.ResourceRequest) error
	GetRequest(ctx context.Context, id string) (*models.ResourceRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.ResourceRequest, error)
	ListRequests(ctx context.Context, opts Filter) ([]models.ResourceRequest, error)
}

type DonationRepository interface {
	CreateDonation(ctx context.Context, d *models.Donation) error
	// CreateMonetaryDonation applies the donor debit, the recipient credit and
	// the donation insert in one transaction.
	CreateMonetaryDonation(ctx context.Context, d *models.Donation, amount decimal.Decimal) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	ListDonations(ctx context.Context, opts Filter) ([]models.Donation, error)
}

type VolunteerRepository interface {
	CreateVolunteer(ctx context.Context, v *models.Volunteer) error
	GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error)
	UpdateVolunteerStatus(ctx context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error)
	ListVolunteers(ctx context.Context, stationID string, opts Filter) ([]models.Volunteer, error)
}

type EmergencyRepository interface {
	CreateEmergency(ctx context.Context, e *models.Emergency) error
	GetEmergency(ctx context.Context, id string) (*models.Emergency, error)
	ListEmergencies(ctx context.Context, opts Filter) ([]models.Emergency, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, opts Filter) ([]models.Notification, error)
}

type ChainBalanceRepository interface {
	UpsertChainBalance(ctx context.Context, b *models.ChainBalance) error
	ListChainBalances(ctx context.Context, userID string) ([]models.ChainBalance, error)
}

// Store is the full persistence surface the coordinator and API depend on.
type Store interface {
	UserRepository
	ResourceRepository
	RequestRepository
	DonationRepository
	VolunteerRepository
	EmergencyRepository
	NotificationRepository
	ChainBalanceRepository
}
