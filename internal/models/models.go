package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the system
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Transaction is one booked ledger row. SIE imports create one per
// verification row; ExternalID (series+verNumber+account) is the
// de-duplication key that makes re-imports safe.
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"userId"`
	Description     string          `db:"description" json:"description"`
	TransactionDate time.Time       `db:"transaction_date" json:"date"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	DisplayAmount   string          `db:"display_amount" json:"displayAmount"`
	Currency        string          `db:"currency" json:"currency"`
	Status          string          `db:"status" json:"status"`
	Category        string          `db:"category" json:"category"`
	Account         string          `db:"account" json:"account"`
	Notes           string          `db:"notes" json:"notes"`
	Source          string          `db:"source" json:"source"`
	ExternalID      string          `db:"external_id" json:"externalId"`
	VoucherID       string          `db:"voucher_id" json:"voucherId"`
	BookedAt        time.Time       `db:"booked_at" json:"bookedAt"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// AccountBalance is an account's balance for one YYYY-MM period.
// Keyed by (user, account number, period); writes overwrite.
type AccountBalance struct {
	UserID        string          `db:"user_id" json:"userId"`
	AccountNumber string          `db:"account_number" json:"accountNumber"`
	Period        string          `db:"period" json:"period"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// Verification is a journal entry header. IsLocked is flipped by the
// monthly close and gates further mutation of the period.
type Verification struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`
	Series           string    `db:"series" json:"series"`
	Number           string    `db:"ver_number" json:"verNumber"`
	ExternalID       string    `db:"external_id" json:"externalId"`
	VerificationDate time.Time `db:"verification_date" json:"date"`
	Description      string    `db:"description" json:"description"`
	IsLocked         bool      `db:"is_locked" json:"isLocked"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// MonthlySummary is the derived per-month closing status and result.
type MonthlySummary struct {
	Month             int     `json:"month"`
	Year              int     `json:"year"`
	Period            string  `json:"period"`
	Label             string  `json:"label"`
	VerificationCount int     `json:"verificationCount"`
	Revenue           float64 `json:"revenue"`
	Expenses          float64 `json:"expenses"`
	Result            float64 `json:"result"`
	Status            string  `json:"status"` // "open" or "closed"
}
