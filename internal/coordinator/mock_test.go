package coordinator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

// mockStore implements repository.Store in memory for coordinator tests.
type mockStore struct {
	users         []*models.User
	resources     []*models.Resource
	requests      []*models.ResourceRequest
	donations     []*models.Donation
	volunteers    []*models.Volunteer
	emergencies   []*models.Emergency
	notifications []*models.Notification
	chainBalances []*models.ChainBalance

	nextID      int
	failNotify  bool // force CreateNotification failures
	failedUsers map[string]bool
}

var _ repository.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{}
}

func (m *mockStore) id() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *mockStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = m.id()
	}
	m.users = append(m.users, u)
	return nil
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	for _, u := range m.users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockStore) ListResidentsByStation(ctx context.Context, stationID string) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == models.RoleResident && u.Resident != nil && u.Resident.FireStationID == stationID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockStore) ListUsersWithWalletAddress(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.WalletAddress != "" {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockStore) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	for _, u := range m.users {
		if u.ID == userID {
			u.WalletBalance = u.WalletBalance.Add(delta)
			return u.WalletBalance, nil
		}
	}
	return decimal.Zero, fmt.Errorf("user %s not found", userID)
}

func (m *mockStore) CreateResource(ctx context.Context, r *models.Resource) error {
	if r.ID == "" {
		r.ID = m.id()
	}
	m.resources = append(m.resources, r)
	return nil
}

func (m *mockStore) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	for _, r := range m.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateResource(ctx context.Context, r *models.Resource) error {
	for i, existing := range m.resources {
		if existing.ID == r.ID {
			m.resources[i] = r
			return nil
		}
	}
	return fmt.Errorf("resource %s not found", r.ID)
}

func (m *mockStore) ListResources(ctx context.Context, ownerID string, opts repository.Filter) ([]models.Resource, error) {
	var out []models.Resource
	for _, r := range m.resources {
		if ownerID == "" || r.OwnerID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockStore) CreateRequest(ctx context.Context, r *models.ResourceRequest) error {
	if r.ID == "" {
		r.ID = m.id()
	}
	m.requests = append(m.requests, r)
	return nil
}

func (m *mockStore) GetRequest(ctx context.Context, id string) (*models.ResourceRequest, error) {
	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.ResourceRequest, error) {
	for _, r := range m.requests {
		if r.ID == id {
			r.Status = status
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListRequests(ctx context.Context, opts repository.Filter) ([]models.ResourceRequest, error) {
	var out []models.ResourceRequest
	for _, r := range m.requests {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockStore) CreateDonation(ctx context.Context, d *models.Donation) error {
	if d.ID == "" {
		d.ID = m.id()
	}
	m.donations = append(m.donations, d)
	return nil
}

func (m *mockStore) CreateMonetaryDonation(ctx context.Context, d *models.Donation, amount decimal.Decimal) error {
	if _, err := m.AdjustWalletBalance(ctx, d.DonorID, amount.Neg()); err != nil {
		return err
	}
	if _, err := m.AdjustWalletBalance(ctx, d.RecipientID, amount); err != nil {
		return err
	}
	return m.CreateDonation(ctx, d)
}

func (m *mockStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	for _, d := range m.donations {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListDonations(ctx context.Context, opts repository.Filter) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range m.donations {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockStore) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	if v.ID == "" {
		v.ID = m.id()
	}
	m.volunteers = append(m.volunteers, v)
	return nil
}

func (m *mockStore) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	for _, v := range m.volunteers {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateVolunteerStatus(ctx context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error) {
	for _, v := range m.volunteers {
		if v.ID == id {
			v.Status = status
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListVolunteers(ctx context.Context, stationID string, opts repository.Filter) ([]models.Volunteer, error) {
	var out []models.Volunteer
	for _, v := range m.volunteers {
		if stationID == "" || v.FireStationID == stationID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockStore) CreateEmergency(ctx context.Context, e *models.Emergency) error {
	if e.ID == "" {
		e.ID = m.id()
	}
	m.emergencies = append(m.emergencies, e)
	return nil
}

func (m *mockStore) GetEmergency(ctx context.Context, id string) (*models.Emergency, error) {
	for _, e := range m.emergencies {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListEmergencies(ctx context.Context, opts repository.Filter) ([]models.Emergency, error) {
	var out []models.Emergency
	for _, e := range m.emergencies {
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if m.failNotify || m.failedUsers[n.RecipientID] {
		return fmt.Errorf("notification insert failed")
	}
	if n.ID == "" {
		n.ID = m.id()
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (m *mockStore) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			return n, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListNotifications(ctx context.Context, recipientID string, opts repository.Filter) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockStore) UpsertChainBalance(ctx context.Context, b *models.ChainBalance) error {
	for i, existing := range m.chainBalances {
		if existing.UserID == b.UserID && existing.Symbol == b.Symbol {
			m.chainBalances[i] = b
			return nil
		}
	}
	m.chainBalances = append(m.chainBalances, b)
	return nil
}

func (m *mockStore) ListChainBalances(ctx context.Context, userID string) ([]models.ChainBalance, error) {
	var out []models.ChainBalance
	for _, b := range m.chainBalances {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}
