package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/forzencookie/sie-server/internal/models"
)

var monthNames = [12]string{
	"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

// MonthlySummaries computes the 12 per-month closing summaries for a
// year. The months are independent read-only queries, so they are
// issued concurrently.
func (s *DefaultService) MonthlySummaries(ctx context.Context, userID string, year int) (*models.MonthlySummariesResponse, error) {
	summaries := make([]models.MonthlySummary, 12)

	g, ctx := errgroup.WithContext(ctx)
	for month := 1; month <= 12; month++ {
		month := month
		g.Go(func() error {
			summary, err := s.monthSummary(ctx, userID, year, month)
			if err != nil {
				return err
			}
			summaries[month-1] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error computing monthly summaries: %w", err)
	}

	return &models.MonthlySummariesResponse{
		Summaries: summaries,
		Year:      year,
	}, nil
}

func (s *DefaultService) monthSummary(ctx context.Context, userID string, year, month int) (*models.MonthlySummary, error) {
	from, to := monthRange(year, month)
	period := fmt.Sprintf("%04d-%02d", year, month)

	balances, err := s.repo.GetAccountBalancesByPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("error getting balances for %s: %w", period, err)
	}

	verifications, err := s.repo.GetVerificationsInRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error getting verifications for %s: %w", period, err)
	}

	// A month is closed only when it has verifications and every one
	// of them is locked. Zero verifications means open.
	status := "open"
	if len(verifications) > 0 {
		status = "closed"
		for _, v := range verifications {
			if !v.IsLocked {
				status = "open"
				break
			}
		}
	}

	revenue := decimal.Zero
	expenses := decimal.Zero
	for _, b := range balances {
		n, err := strconv.Atoi(b.AccountNumber)
		if err != nil {
			continue
		}
		switch {
		case n >= 3000 && n <= 3999:
			// Revenue accounts are credit-normal, so their balances
			// carry a negative sign in the ledger.
			revenue = revenue.Add(b.Balance.Abs())
		case n >= 4000 && n <= 8999:
			expenses = expenses.Add(b.Balance)
		}
	}

	return &models.MonthlySummary{
		Month:             month,
		Year:              year,
		Period:            period,
		Label:             fmt.Sprintf("%s %d", monthNames[month-1], year),
		VerificationCount: len(verifications),
		Revenue:           revenue.InexactFloat64(),
		Expenses:          expenses.InexactFloat64(),
		Result:            revenue.Sub(expenses).InexactFloat64(),
		Status:            status,
	}, nil
}

// CloseMonth locks every verification in the month. Re-closing an
// already closed month just re-asserts the flag.
func (s *DefaultService) CloseMonth(ctx context.Context, userID string, year, month int) (*models.CloseMonthResponse, error) {
	return s.setMonthLocked(ctx, userID, year, month, true)
}

// ReopenMonth unlocks every verification in the month. There is
// deliberately no guard against reopening a period whose reports have
// already been filed; keeping those consistent is the caller's job.
func (s *DefaultService) ReopenMonth(ctx context.Context, userID string, year, month int) (*models.CloseMonthResponse, error) {
	return s.setMonthLocked(ctx, userID, year, month, false)
}

func (s *DefaultService) setMonthLocked(ctx context.Context, userID string, year, month int, locked bool) (*models.CloseMonthResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	from, to := monthRange(year, month)
	affected, err := s.repo.SetVerificationsLocked(ctx, userID, from, to, locked)
	if err != nil {
		return nil, fmt.Errorf("error updating verification locks: %w", err)
	}

	label := fmt.Sprintf("%s %d", monthNames[month-1], year)
	var message string
	if locked {
		message = fmt.Sprintf("%s stängd. %d verifikationer låsta.", label, affected)
	} else {
		message = fmt.Sprintf("%s öppnad. %d verifikationer upplåsta.", label, affected)
	}

	s.log.Info().
		Str("user", userID).
		Str("period", fmt.Sprintf("%04d-%02d", year, month)).
		Bool("locked", locked).
		Int64("affected", affected).
		Msg("updated month lock")

	return &models.CloseMonthResponse{
		Success:       true,
		Message:       message,
		AffectedCount: affected,
	}, nil
}

// monthRange returns the first and last calendar day of the month, both
// at midnight UTC.
func monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return from, to
}
