package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements are ordered and individually idempotent: re-running the whole
// list against an already migrated database is a no-op.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		last_name TEXT NOT NULL,
		first_name TEXT NOT NULL,
		middle_name TEXT NOT NULL,
		passport_series CHAR(4) NOT NULL CHECK (passport_series ~ '^[0-9]{4}$'),
		passport_number CHAR(6) NOT NULL CHECK (passport_number ~ '^[0-9]{6}$'),
		birth_date DATE NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		address TEXT NOT NULL,
		CONSTRAINT uq_clients_passport UNIQUE (passport_series, passport_number)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_clients_last_name ON clients (last_name);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		number VARCHAR(40) NOT NULL,
		client_id BIGINT NOT NULL REFERENCES clients(id) ON UPDATE RESTRICT ON DELETE RESTRICT,
		principal NUMERIC(12,2) NOT NULL CHECK (principal > 0),
		status VARCHAR(16) NOT NULL CHECK (status IN ('Draft', 'Active', 'Closed')),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_contracts_number UNIQUE (number),
		CONSTRAINT chk_contracts_dates CHECK (end_date >= start_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_end_date ON contracts (end_date);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
