package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forzencookie/sie-server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Ledger write operations. Inserts return ErrDuplicate when the
	// row's de-duplication key already exists.
	InsertTransaction(ctx context.Context, txn *models.Transaction) error
	InsertVerification(ctx context.Context, ver *models.Verification) error
	UpsertAccountBalance(ctx context.Context, balance *models.AccountBalance) error

	// Read operations for the monthly close
	GetAccountBalancesByPeriod(ctx context.Context, userID, period string) ([]models.AccountBalance, error)
	GetVerificationsInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Verification, error)

	// SetVerificationsLocked flips is_locked on every verification in
	// [from, to] and reports how many rows were touched.
	SetVerificationsLocked(ctx context.Context, userID string, from, to time.Time, locked bool) (int64, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

// Ledger repository methods
func (r *PostgresRepository) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, description, transaction_date, amount, display_amount,
			currency, status, category, account, notes, source,
			external_id, voucher_id, booked_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.UserID, txn.Description, txn.TransactionDate, txn.Amount, txn.DisplayAmount,
		txn.Currency, txn.Status, txn.Category, txn.Account, txn.Notes, txn.Source,
		txn.ExternalID, txn.VoucherID, txn.BookedAt, txn.CreatedAt)

	return classifyInsertErr(err)
}

func (r *PostgresRepository) InsertVerification(ctx context.Context, ver *models.Verification) error {
	query := `
		INSERT INTO verifications (
			id, user_id, series, ver_number, external_id,
			verification_date, description, is_locked, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if ver.ID == "" {
		ver.ID = uuid.New().String()
	}
	if ver.CreatedAt.IsZero() {
		ver.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		ver.ID, ver.UserID, ver.Series, ver.Number, ver.ExternalID,
		ver.VerificationDate, ver.Description, ver.IsLocked, ver.CreatedAt)

	return classifyInsertErr(err)
}

func (r *PostgresRepository) UpsertAccountBalance(ctx context.Context, balance *models.AccountBalance) error {
	query := `
		INSERT INTO account_balances (user_id, account_number, period, balance, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, account_number, period)
		DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`

	balance.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		balance.UserID, balance.AccountNumber, balance.Period, balance.Balance, balance.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetAccountBalancesByPeriod(
	ctx context.Context,
	userID string,
	period string,
) ([]models.AccountBalance, error) {
	query := `
		SELECT * FROM account_balances
		WHERE user_id = $1 AND period = $2
		ORDER BY account_number ASC
	`

	var balances []models.AccountBalance
	err := r.db.SelectContext(ctx, &balances, query, userID, period)
	if err != nil {
		return nil, err
	}

	return balances, nil
}

func (r *PostgresRepository) GetVerificationsInRange(
	ctx context.Context,
	userID string,
	from time.Time,
	to time.Time,
) ([]models.Verification, error) {
	query := `
		SELECT * FROM verifications
		WHERE user_id = $1 AND verification_date BETWEEN $2 AND $3
		ORDER BY verification_date ASC, series ASC, ver_number ASC
	`

	var verifications []models.Verification
	err := r.db.SelectContext(ctx, &verifications, query, userID, from, to)
	if err != nil {
		return nil, err
	}

	return verifications, nil
}

func (r *PostgresRepository) SetVerificationsLocked(
	ctx context.Context,
	userID string,
	from time.Time,
	to time.Time,
	locked bool,
) (int64, error) {
	// Single bulk update; the statement's own atomicity is the only
	// transaction boundary here.
	query := `
		UPDATE verifications
		SET is_locked = $1
		WHERE user_id = $2 AND verification_date BETWEEN $3 AND $4
	`

	res, err := r.db.ExecContext(ctx, query, locked, userID, from, to)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
