package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

const userColumns = `id, handle, role, display_name, password_hash, wallet_balance,
	wallet_address, postal_code, fire_station_id, registration_id,
	postal_code_start, postal_code_end, specialization, created_at`

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	var (
		postalCode, stationID, registrationID sql.NullString
		rangeStart, rangeEnd, specialization  sql.NullString
	)
	switch u.Role {
	case models.RoleResident:
		if u.Resident == nil {
			return fmt.Errorf("resident profile is nil")
		}
		postalCode = nullString(u.Resident.PostalCode)
		stationID = nullString(u.Resident.FireStationID)
	case models.RoleFireStation:
		if u.FireStation == nil {
			return fmt.Errorf("fire station profile is nil")
		}
		registrationID = nullString(u.FireStation.RegistrationID)
		rangeStart = nullString(u.FireStation.PostalCodeStart)
		rangeEnd = nullString(u.FireStation.PostalCodeEnd)
	case models.RoleNGO:
		if u.NGO == nil {
			return fmt.Errorf("ngo profile is nil")
		}
		registrationID = nullString(u.NGO.RegistrationID)
		specialization = nullString(u.NGO.Specialization)
		stationID = nullString(u.NGO.FireStationID)
	default:
		return fmt.Errorf("unknown role: %s", u.Role)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, handle, role, display_name, password_hash, wallet_balance,
			wallet_address, postal_code, fire_station_id, registration_id,
			postal_code_start, postal_code_end, specialization, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Handle, u.Role, u.DisplayName, u.PasswordHash, u.WalletBalance.String(),
		nullString(u.WalletAddress), postalCode, stationID, registrationID,
		rangeStart, rangeEnd, specialization, u.CreatedAt)
	return err
}

func (s *SQLiteDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteDB) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE handle = ?`, handle)
	return scanUser(row)
}

func (s *SQLiteDB) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at, id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *SQLiteDB) ListResidentsByStation(ctx context.Context, stationID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? AND fire_station_id = ? ORDER BY created_at, id`,
		models.RoleResident, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *SQLiteDB) ListUsersWithWalletAddress(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE wallet_address IS NOT NULL AND wallet_address != '' ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                                    models.User
		balance                              string
		walletAddress, postalCode, stationID sql.NullString
		registrationID, rangeStart, rangeEnd sql.NullString
		specialization                       sql.NullString
	)
	err := row.Scan(&u.ID, &u.Handle, &u.Role, &u.DisplayName, &u.PasswordHash, &balance,
		&walletAddress, &postalCode, &stationID, &registrationID,
		&rangeStart, &rangeEnd, &specialization, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	u.WalletBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet balance for user %s: %w", u.ID, err)
	}
	u.WalletAddress = walletAddress.String

	switch u.Role {
	case models.RoleResident:
		u.Resident = &models.ResidentProfile{
			PostalCode:    postalCode.String,
			FireStationID: stationID.String,
		}
	case models.RoleFireStation:
		u.FireStation = &models.FireStationProfile{
			RegistrationID:  registrationID.String,
			PostalCodeStart: rangeStart.String,
			PostalCodeEnd:   rangeEnd.String,
		}
	case models.RoleNGO:
		u.NGO = &models.NGOProfile{
			RegistrationID: registrationID.String,
			Specialization: specialization.String,
			FireStationID:  stationID.String,
		}
	}

	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
