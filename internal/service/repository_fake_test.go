package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/forzencookie/sie-server/internal/models"
	"github.com/forzencookie/sie-server/internal/repository"
)

// fakeRepository is an in-memory Repository that mimics the unique
// constraints the Postgres schema enforces, so import idempotency and
// lock behavior can be tested without a database.
type fakeRepository struct {
	mu            sync.Mutex
	users         map[string]*models.User
	transactions  map[string]*models.Transaction // userID|externalID
	verifications map[string]*models.Verification
	balances      map[string]*models.AccountBalance // userID|account|period

	// txnErrs injects non-duplicate failures per transaction external id.
	txnErrs map[string]error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[string]*models.User),
		transactions:  make(map[string]*models.Transaction),
		verifications: make(map[string]*models.Verification),
		balances:      make(map[string]*models.AccountBalance),
		txnErrs:       make(map[string]error),
	}
}

func newTestService(repo repository.Repository) *DefaultService {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte("test-secret"),
		tokenDuration: time.Hour,
		log:           zerolog.Nop(),
	}
}

func (f *fakeRepository) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = user
	return nil
}

func (f *fakeRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) InsertTransaction(_ context.Context, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.txnErrs[txn.ExternalID]; ok {
		return err
	}
	key := txn.UserID + "|" + txn.ExternalID
	if _, exists := f.transactions[key]; exists {
		return repository.ErrDuplicate
	}
	copied := *txn
	f.transactions[key] = &copied
	return nil
}

func (f *fakeRepository) InsertVerification(_ context.Context, ver *models.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ver.UserID + "|" + ver.ExternalID
	if _, exists := f.verifications[key]; exists {
		return repository.ErrDuplicate
	}
	copied := *ver
	f.verifications[key] = &copied
	return nil
}

func (f *fakeRepository) UpsertAccountBalance(_ context.Context, balance *models.AccountBalance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := balance.UserID + "|" + balance.AccountNumber + "|" + balance.Period
	copied := *balance
	f.balances[key] = &copied
	return nil
}

func (f *fakeRepository) GetAccountBalancesByPeriod(_ context.Context, userID, period string) ([]models.AccountBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AccountBalance
	for _, b := range f.balances {
		if b.UserID == userID && b.Period == period {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetVerificationsInRange(_ context.Context, userID string, from, to time.Time) ([]models.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Verification
	for _, v := range f.verifications {
		if v.UserID == userID && !v.VerificationDate.Before(from) && !v.VerificationDate.After(to) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeRepository) SetVerificationsLocked(_ context.Context, userID string, from, to time.Time, locked bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for _, v := range f.verifications {
		if v.UserID == userID && !v.VerificationDate.Before(from) && !v.VerificationDate.After(to) {
			v.IsLocked = locked
			affected++
		}
	}
	return affected, nil
}
