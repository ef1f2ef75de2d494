// Package sie parses SIE4 files, the Swedish text format for exchanging
// accounting data (chart of accounts, balances, verifications).
package sie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Document is the result of parsing one SIE file.
type Document struct {
	// Program is the name of the software that exported the file.
	Program string

	// FiscalYears holds the #RAR ranges in file order. Index 0 is the
	// active fiscal year; later entries are comparison years.
	FiscalYears []FiscalYear

	// Accounts holds the #KONTO chart-of-accounts entries.
	Accounts []Account

	// Balances holds #IB and #UB rows. Year is the SIE relative offset
	// (0 = active fiscal year, -1 = previous year), not a calendar year.
	Balances []Balance

	// Verifications holds #VER entries with their #TRANS rows attached
	// in file order.
	Verifications []Verification
}

// FiscalYear is a #RAR range. Start and End are raw YYYYMMDD strings.
type FiscalYear struct {
	Start string
	End   string
}

// Account is a #KONTO entry.
type Account struct {
	Number string
	Name   string
}

// Balance is an #IB (opening) or #UB (closing) balance row.
type Balance struct {
	Account string
	Amount  decimal.Decimal
	Year    int
	Closing bool
}

// Verification is a #VER journal entry. Rows should net to zero for a
// well-formed double entry, but the parser does not enforce that.
type Verification struct {
	Series      string
	Number      string
	Date        string // raw YYYYMMDD
	Description string
	Rows        []VerificationRow
}

// VerificationRow is a #TRANS line. Amount is signed per SIE convention.
type VerificationRow struct {
	Account string
	Amount  decimal.Decimal
}

// Warning records a line that could not be parsed and was skipped.
type Warning struct {
	Line   int
	Raw    string
	Reason string
}

// Parse scans a SIE file line by line. It never fails: malformed lines
// are reported as warnings and skipped, and the scan continues, so the
// returned document is best effort and may be partially empty.
func Parse(content string) (*Document, []Warning) {
	doc := &Document{}
	var warnings []Warning

	// #TRANS rows attach to the most recent #VER in file order.
	var current *Verification

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	for i, raw := range strings.Split(normalized, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || !strings.HasPrefix(line, "#") {
			continue
		}

		fields := tokenize(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch strings.ToUpper(fields[0]) {
		case "#PROGRAM":
			if len(fields) > 1 {
				doc.Program = unquote(fields[1])
			}
		case "#RAR":
			err = parseRAR(doc, fields)
		case "#KONTO":
			err = parseKonto(doc, fields)
		case "#IB":
			err = parseBalance(doc, fields, false)
		case "#UB":
			err = parseBalance(doc, fields, true)
		case "#VER":
			err = parseVer(doc, fields)
			if err == nil {
				current = &doc.Verifications[len(doc.Verifications)-1]
			}
		case "#TRANS":
			// Ignored when no verification context is open.
			if current != nil {
				err = parseTrans(current, fields)
			}
		default:
			// Unrecognized tags are skipped silently.
		}

		if err != nil {
			warnings = append(warnings, Warning{Line: lineNo, Raw: line, Reason: err.Error()})
		}
	}

	return doc, warnings
}

func parseRAR(doc *Document, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("#RAR: expected 3 fields, got %d", len(fields)-1)
	}
	doc.FiscalYears = append(doc.FiscalYears, FiscalYear{
		Start: unquote(fields[2]),
		End:   unquote(fields[3]),
	})
	return nil
}

func parseKonto(doc *Document, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("#KONTO: expected 2 fields, got %d", len(fields)-1)
	}
	doc.Accounts = append(doc.Accounts, Account{
		Number: unquote(fields[1]),
		Name:   unquote(fields[2]),
	})
	return nil
}

func parseBalance(doc *Document, fields []string, closing bool) error {
	tag := "#IB"
	if closing {
		tag = "#UB"
	}
	if len(fields) < 4 {
		return fmt.Errorf("%s: expected 3 fields, got %d", tag, len(fields)-1)
	}
	year, err := strconv.Atoi(unquote(fields[1]))
	if err != nil {
		return fmt.Errorf("%s: bad year offset %q: %w", tag, fields[1], err)
	}
	amount, err := decimal.NewFromString(unquote(fields[3]))
	if err != nil {
		return fmt.Errorf("%s: bad amount %q: %w", tag, fields[3], err)
	}
	doc.Balances = append(doc.Balances, Balance{
		Account: unquote(fields[2]),
		Amount:  amount,
		Year:    year,
		Closing: closing,
	})
	return nil
}

func parseVer(doc *Document, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("#VER: expected at least 3 fields, got %d", len(fields)-1)
	}
	ver := Verification{
		Series: unquote(fields[1]),
		Number: unquote(fields[2]),
		Date:   unquote(fields[3]),
	}
	if len(fields) > 4 {
		ver.Description = unquote(fields[4])
	}
	doc.Verifications = append(doc.Verifications, ver)
	return nil
}

func parseTrans(ver *Verification, fields []string) error {
	// #TRANS account {objects} amount [date] [text]
	if len(fields) < 4 {
		return fmt.Errorf("#TRANS: expected at least 3 fields, got %d", len(fields)-1)
	}
	amount, err := decimal.NewFromString(unquote(fields[3]))
	if err != nil {
		return fmt.Errorf("#TRANS: bad amount %q: %w", fields[3], err)
	}
	ver.Rows = append(ver.Rows, VerificationRow{
		Account: unquote(fields[1]),
		Amount:  amount,
	})
	return nil
}

// tokenize splits a line on whitespace, keeping double-quoted segments
// as single tokens. The quote state flips on every '"'; embedded quotes
// cannot be escaped. Quote characters are kept in the token and must be
// stripped by the caller via unquote.
func tokenize(line string) []string {
	var tokens []string
	var b strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case (r == ' ' || r == '\t') && !inQuotes:
			if b.Len() > 0 {
				tokens = append(tokens, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
