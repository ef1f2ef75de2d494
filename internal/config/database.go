package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create transactions table. The unique (user_id, external_id)
	// constraint is what makes SIE re-imports idempotent.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			transaction_date TIMESTAMP NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			display_amount VARCHAR(64) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			status VARCHAR(32) NOT NULL,
			category VARCHAR(255) NOT NULL,
			account VARCHAR(16) NOT NULL,
			notes TEXT,
			source VARCHAR(32) NOT NULL,
			external_id VARCHAR(128) NOT NULL,
			voucher_id VARCHAR(128) NOT NULL,
			booked_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, external_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create account_balances table, one row per (user, account, month)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS account_balances (
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			account_number VARCHAR(16) NOT NULL,
			period VARCHAR(7) NOT NULL,
			balance NUMERIC(14,2) NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, account_number, period)
		)
	`)
	if err != nil {
		return err
	}

	// Create verifications table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verifications (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			series VARCHAR(16) NOT NULL,
			ver_number VARCHAR(32) NOT NULL,
			external_id VARCHAR(128) NOT NULL,
			verification_date TIMESTAMP NOT NULL,
			description TEXT,
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, external_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, transaction_date)",
		"CREATE INDEX IF NOT EXISTS idx_verifications_user_date ON verifications(user_id, verification_date)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
