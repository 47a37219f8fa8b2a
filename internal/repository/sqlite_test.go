package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newResident(handle, postalCode, stationID string) *models.User {
	return &models.User{
		Handle:       handle,
		Role:         models.RoleResident,
		DisplayName:  handle,
		PasswordHash: "x",
		Resident: &models.ResidentProfile{
			PostalCode:    postalCode,
			FireStationID: stationID,
		},
	}
}

func newStation(handle string) *models.User {
	return &models.User{
		Handle:       handle,
		Role:         models.RoleFireStation,
		DisplayName:  handle,
		PasswordHash: "x",
		FireStation: &models.FireStationProfile{
			RegistrationID:  "fs-" + handle,
			PostalCodeStart: "100",
			PostalCodeEnd:   "200",
		},
	}
}

func TestSQLiteDB_CreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := newResident("alice", "150", "")
	u.WalletBalance = decimal.NewFromInt(100)
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	got, err := db.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got == nil {
		t.Fatal("expected user, got nil")
	}
	if got.Handle != "alice" || got.Role != models.RoleResident {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.Resident == nil || got.Resident.PostalCode != "150" {
		t.Errorf("expected resident profile with postal code 150, got %+v", got.Resident)
	}
	if !got.WalletBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", got.WalletBalance)
	}
}

func TestSQLiteDB_GetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetUser(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing user, got %+v", got)
	}
}

func TestSQLiteDB_ListUsersByRole(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, u := range []*models.User{
		newStation("station-1"),
		newStation("station-2"),
		newResident("bob", "120", ""),
	} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	stations, err := db.ListUsersByRole(ctx, models.RoleFireStation)
	if err != nil {
		t.Fatalf("failed to list stations: %v", err)
	}
	if len(stations) != 2 {
		t.Errorf("expected 2 stations, got %d", len(stations))
	}
}

func TestSQLiteDB_ListResidentsByStation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	st := newStation("station-1")
	if err := db.CreateUser(ctx, st); err != nil {
		t.Fatalf("failed to create station: %v", err)
	}

	assigned := newResident("carol", "150", st.ID)
	unassigned := newResident("dave", "999", "")
	for _, u := range []*models.User{assigned, unassigned} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create resident: %v", err)
		}
	}

	residents, err := db.ListResidentsByStation(ctx, st.ID)
	if err != nil {
		t.Fatalf("failed to list residents: %v", err)
	}
	if len(residents) != 1 || residents[0].Handle != "carol" {
		t.Errorf("expected only carol, got %+v", residents)
	}
}

func TestSQLiteDB_AdjustWalletBalance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := newResident("erin", "150", "")
	u.WalletBalance = decimal.NewFromInt(50)
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	balance, err := db.AdjustWalletBalance(ctx, u.ID, decimal.NewFromInt(-30))
	if err != nil {
		t.Fatalf("failed to adjust balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected balance 20, got %s", balance)
	}
}

func TestSQLiteDB_CreateMonetaryDonation_MovesBalances(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	donor := newResident("frank", "150", "")
	donor.WalletBalance = decimal.NewFromInt(100)
	recipient := newStation("station-9")
	for _, u := range []*models.User{donor, recipient} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	amount := decimal.NewFromInt(20)
	d := &models.Donation{
		DonorID:     donor.ID,
		RecipientID: recipient.ID,
		Kind:        models.DonationKindMonetary,
		Money:       &models.MonetaryGift{Amount: amount, Currency: "USDC"},
		Status:      models.DonationStatusPending,
	}
	if err := db.CreateMonetaryDonation(ctx, d, amount); err != nil {
		t.Fatalf("failed to create monetary donation: %v", err)
	}

	gotDonor, _ := db.GetUser(ctx, donor.ID)
	gotRecipient, _ := db.GetUser(ctx, recipient.ID)
	if !gotDonor.WalletBalance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected donor balance 80, got %s", gotDonor.WalletBalance)
	}
	if !gotRecipient.WalletBalance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected recipient balance 20, got %s", gotRecipient.WalletBalance)
	}

	gotDonation, err := db.GetDonation(ctx, d.ID)
	if err != nil {
		t.Fatalf("failed to get donation: %v", err)
	}
	if gotDonation.Status != models.DonationStatusPending {
		t.Errorf("expected pending donation, got %s", gotDonation.Status)
	}
	if gotDonation.Money == nil || !gotDonation.Money.Amount.Equal(amount) {
		t.Errorf("unexpected money payload: %+v", gotDonation.Money)
	}
}

func TestSQLiteDB_CreateMonetaryDonation_UnknownRecipientRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	donor := newResident("gina", "150", "")
	donor.WalletBalance = decimal.NewFromInt(100)
	if err := db.CreateUser(ctx, donor); err != nil {
		t.Fatalf("failed to create donor: %v", err)
	}

	amount := decimal.NewFromInt(20)
	d := &models.Donation{
		DonorID:     donor.ID,
		RecipientID: "missing",
		Kind:        models.DonationKindMonetary,
		Money:       &models.MonetaryGift{Amount: amount, Currency: "USDC"},
		Status:      models.DonationStatusPending,
	}
	if err := db.CreateMonetaryDonation(ctx, d, amount); err == nil {
		t.Fatal("expected error for missing recipient")
	}

	gotDonor, _ := db.GetUser(ctx, donor.ID)
	if !gotDonor.WalletBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected donor balance untouched at 100, got %s", gotDonor.WalletBalance)
	}
}

func TestSQLiteDB_RequestStatusLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	st := newStation("station-1")
	if err := db.CreateUser(ctx, st); err != nil {
		t.Fatalf("failed to create station: %v", err)
	}

	req := &models.ResourceRequest{
		RequesterID:  st.ID,
		ResourceType: "Water",
		Quantity:     50,
		Urgency:      models.UrgencyHigh,
		Status:       models.RequestStatusPending,
	}
	if err := db.CreateRequest(ctx, req); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	updated, err := db.UpdateRequestStatus(ctx, req.ID, models.RequestStatusFulfilled)
	if err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if updated == nil || updated.Status != models.RequestStatusFulfilled {
		t.Errorf("expected fulfilled request, got %+v", updated)
	}

	missing, err := db.UpdateRequestStatus(ctx, "missing", models.RequestStatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing request, got %+v", missing)
	}
}

func TestSQLiteDB_VolunteerRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	st := newStation("station-1")
	res := newResident("henry", "150", "")
	for _, u := range []*models.User{st, res} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	v := &models.Volunteer{
		UserID:           res.ID,
		FireStationID:    st.ID,
		Skills:           []string{"first-aid", "driving"},
		Availability:     []string{"weekends"},
		EmergencyContact: "555-0100",
		Status:           models.VolunteerStatusActive,
	}
	if err := db.CreateVolunteer(ctx, v); err != nil {
		t.Fatalf("failed to create volunteer: %v", err)
	}

	got, err := db.GetVolunteer(ctx, v.ID)
	if err != nil {
		t.Fatalf("failed to get volunteer: %v", err)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "first-aid" {
		t.Errorf("unexpected skills: %v", got.Skills)
	}

	updated, err := db.UpdateVolunteerStatus(ctx, v.ID, models.VolunteerStatusOnCall)
	if err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if updated.Status != models.VolunteerStatusOnCall {
		t.Errorf("expected on_call, got %s", updated.Status)
	}
}

func TestSQLiteDB_MarkNotificationRead_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	st := newStation("station-1")
	if err := db.CreateUser(ctx, st); err != nil {
		t.Fatalf("failed to create station: %v", err)
	}

	n := &models.Notification{
		RecipientID: st.ID,
		Title:       "t",
		Content:     "c",
		Type:        models.NotificationTypeRequest,
	}
	if err := db.CreateNotification(ctx, n); err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := db.MarkNotificationRead(ctx, n.ID)
		if err != nil {
			t.Fatalf("mark read attempt %d failed: %v", i+1, err)
		}
		if got == nil || !got.Read {
			t.Fatalf("attempt %d: expected read notification, got %+v", i+1, got)
		}
	}

	missing, err := db.MarkNotificationRead(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing notification, got %+v", missing)
	}
}

func TestSQLiteDB_ChainBalanceUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := newResident("iris", "150", "")
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	b := &models.ChainBalance{UserID: u.ID, Symbol: "USDC", Amount: decimal.NewFromInt(5), Decimals: 6}
	if err := db.UpsertChainBalance(ctx, b); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	b.Amount = decimal.NewFromInt(7)
	if err := db.UpsertChainBalance(ctx, b); err != nil {
		t.Fatalf("failed to upsert again: %v", err)
	}

	balances, err := db.ListChainBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to list balances: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance row, got %d", len(balances))
	}
	if !balances[0].Amount.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected updated amount 7, got %s", balances[0].Amount)
	}
}

func TestSQLiteDB_DonationResourceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	donor := newResident("jack", "150", "")
	recipient := newStation("station-1")
	for _, u := range []*models.User{donor, recipient} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	d := &models.Donation{
		DonorID:     donor.ID,
		RecipientID: recipient.ID,
		Kind:        models.DonationKindResource,
		Resource:    &models.ResourceGift{ResourceType: "Blankets", Quantity: 10},
		Status:      models.DonationStatusPending,
	}
	if err := db.CreateDonation(ctx, d); err != nil {
		t.Fatalf("failed to create donation: %v", err)
	}

	got, err := db.GetDonation(ctx, d.ID)
	if err != nil {
		t.Fatalf("failed to get donation: %v", err)
	}
	if got.Kind != models.DonationKindResource {
		t.Errorf("expected resource kind, got %s", got.Kind)
	}
	if got.Resource == nil || got.Resource.Quantity != 10 {
		t.Errorf("unexpected resource payload: %+v", got.Resource)
	}
	if got.Money != nil {
		t.Errorf("expected no money payload, got %+v", got.Money)
	}
}
