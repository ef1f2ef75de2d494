package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forzencookie/sie-server/internal/models"
	"github.com/forzencookie/sie-server/internal/repository"
	"github.com/forzencookie/sie-server/internal/sie"
)

const (
	importSource = "sie_import"
	importStatus = "Bokförd"
	currencySEK  = "SEK"
)

// ImportSIE parses a SIE file and posts its verifications and balances
// to the user's ledger. Row upserts run sequentially so partial writes
// from one import never interleave; a failed row is recorded and the
// batch continues. Rows rejected as duplicates of an earlier import are
// skipped silently, which is what makes re-uploading the same file safe.
func (s *DefaultService) ImportSIE(ctx context.Context, userID, fileText string) (*models.ImportResponse, error) {
	doc, warnings := sie.Parse(fileText)
	for _, w := range warnings {
		s.log.Warn().
			Int("line", w.Line).
			Str("raw", w.Raw).
			Str("reason", w.Reason).
			Msg("skipped unparseable SIE line")
	}

	fy := activeFiscalYear(doc)
	accountNames := make(map[string]string, len(doc.Accounts))
	for _, a := range doc.Accounts {
		accountNames[a.Number] = a.Name
	}

	stats := models.ImportStats{
		Verifications: len(doc.Verifications),
		Accounts:      len(doc.Accounts),
		Balances:      len(doc.Balances),
		Period:        fy.label,
	}
	var rowErrors []string

	for _, ver := range doc.Verifications {
		verDate := parseSIEDate(ver.Date)
		voucherID := ver.Series + ver.Number

		err := s.repo.InsertVerification(ctx, &models.Verification{
			UserID:           userID,
			Series:           ver.Series,
			Number:           ver.Number,
			ExternalID:       voucherID,
			VerificationDate: verDate,
			Description:      ver.Description,
			IsLocked:         false,
		})
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			rowErrors = append(rowErrors, fmt.Sprintf("Verifikation %s: %v", voucherID, err))
		}

		for _, row := range ver.Rows {
			category := accountNames[row.Account]
			if category == "" {
				category = "Konto " + row.Account
			}

			txn := &models.Transaction{
				UserID:          userID,
				Description:     ver.Description,
				TransactionDate: verDate,
				Amount:          row.Amount,
				DisplayAmount:   formatSEK(row.Amount),
				Currency:        currencySEK,
				Status:          importStatus,
				Category:        category,
				Account:         row.Account,
				Notes:           importNote(doc.Program),
				Source:          importSource,
				ExternalID:      voucherID + row.Account,
				VoucherID:       voucherID,
				BookedAt:        verDate,
			}

			switch err := s.repo.InsertTransaction(ctx, txn); {
			case err == nil:
				stats.TransactionsInserted++
			case errors.Is(err, repository.ErrDuplicate):
				// Already imported, skip silently.
			default:
				rowErrors = append(rowErrors, fmt.Sprintf("Verifikation %s: %v", voucherID, err))
			}
		}
	}

	for _, bal := range doc.Balances {
		// Opening balances land on the fiscal year's first month,
		// everything else on its last. True per-period balances in the
		// file are not preserved.
		period := fy.endPeriod
		if !bal.Closing && bal.Year == 0 {
			period = fy.startPeriod
		}

		err := s.repo.UpsertAccountBalance(ctx, &models.AccountBalance{
			UserID:        userID,
			AccountNumber: bal.Account,
			Period:        period,
			Balance:       bal.Amount,
		})
		switch {
		case err == nil:
			stats.AccountBalancesInserted++
		case errors.Is(err, repository.ErrDuplicate):
			// Already imported, skip silently.
		default:
			rowErrors = append(rowErrors, fmt.Sprintf("Saldo konto %s: %v", bal.Account, err))
		}
	}

	return &models.ImportResponse{
		Success: true,
		Stats:   stats,
		Errors:  rowErrors,
	}, nil
}

type fiscalYear struct {
	label       string
	startPeriod string // YYYY-MM
	endPeriod   string // YYYY-MM
}

// activeFiscalYear resolves the document's first #RAR range. Without
// one, the current month stands in for both ends.
func activeFiscalYear(doc *sie.Document) fiscalYear {
	if len(doc.FiscalYears) == 0 {
		now := parseSIEDate("")
		return fiscalYear{
			label:       "",
			startPeriod: now.Format("2006-01"),
			endPeriod:   now.Format("2006-01"),
		}
	}

	start := parseSIEDate(doc.FiscalYears[0].Start)
	end := parseSIEDate(doc.FiscalYears[0].End)
	return fiscalYear{
		label:       start.Format("2006-01-02") + " – " + end.Format("2006-01-02"),
		startPeriod: start.Format("2006-01"),
		endPeriod:   end.Format("2006-01"),
	}
}

// parseSIEDate parses an 8-digit YYYYMMDD date. Malformed values fall
// back to today at midnight UTC rather than failing the row.
func parseSIEDate(s string) time.Time {
	if len(s) == 8 {
		if t, err := time.Parse("20060102", s); err == nil {
			return t.UTC()
		}
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func importNote(program string) string {
	if program == "" {
		return "Importerad från SIE-fil"
	}
	return "Importerad från SIE-fil (" + program + ")"
}

// formatSEK renders an amount the Swedish way: space-grouped thousands,
// decimal comma, trailing "kr".
func formatSEK(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(" kr")
	return b.String()
}
