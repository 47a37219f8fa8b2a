package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ Store = (*SQLiteDB)(nil)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	// Single writer at a time keeps the balance read-modify-write safe.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			handle TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			wallet_balance TEXT NOT NULL DEFAULT '0',
			wallet_address TEXT,
			postal_code TEXT,
			fire_station_id TEXT,
			registration_id TEXT,
			postal_code_start TEXT,
			postal_code_end TEXT,
			specialization TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			quantity INTEGER NOT NULL DEFAULT 0,
			owner_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS resource_requests (
			id TEXT PRIMARY KEY,
			requester_id TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			urgency TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (requester_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS donations (
			id TEXT PRIMARY KEY,
			donor_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			resource_type TEXT,
			resource_quantity INTEGER,
			amount TEXT,
			currency TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (donor_id) REFERENCES users(id),
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS volunteers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			fire_station_id TEXT NOT NULL,
			skills TEXT,
			availability TEXT,
			emergency_contact TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (fire_station_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS emergencies (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			reporter_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			location TEXT,
			resources_needed TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (reporter_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT,
			type TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS chain_balances (
			user_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			amount TEXT NOT NULL,
			decimals INTEGER NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, symbol),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
		CREATE INDEX IF NOT EXISTS idx_users_station ON users(fire_station_id);
		CREATE INDEX IF NOT EXISTS idx_requests_status ON resource_requests(status);
		CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
		CREATE INDEX IF NOT EXISTS idx_volunteers_station ON volunteers(fire_station_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
