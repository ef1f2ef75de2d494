package sie

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullFile(t *testing.T) {
	content := `#FLAGGA 0
#PROGRAM "Bokio" 1.0
#FORMAT PC8
#RAR 0 20240101 20241231
#RAR -1 20230101 20231231
#KONTO 1930 "Företagskonto"
#KONTO 3001 "Försäljning"
#IB 0 1930 50000.00
#UB 0 1930 60000.00
#VER A 1 20240115 "Hyra januari"
{
#TRANS 5010 {} -10000.00 20240115
#TRANS 1930 {} 10000.00 20240115
}
#VER A 2 20240201 "Försäljning"
{
#TRANS 3001 {} -2500.00
#TRANS 1930 {} 2500.00
}
`

	doc, warnings := Parse(content)
	assert.Empty(t, warnings)

	assert.Equal(t, "Bokio", doc.Program)

	require.Len(t, doc.FiscalYears, 2)
	assert.Equal(t, FiscalYear{Start: "20240101", End: "20241231"}, doc.FiscalYears[0])
	assert.Equal(t, FiscalYear{Start: "20230101", End: "20231231"}, doc.FiscalYears[1])

	require.Len(t, doc.Accounts, 2)
	assert.Equal(t, Account{Number: "1930", Name: "Företagskonto"}, doc.Accounts[0])

	require.Len(t, doc.Balances, 2)
	assert.Equal(t, "1930", doc.Balances[0].Account)
	assert.Equal(t, 0, doc.Balances[0].Year)
	assert.False(t, doc.Balances[0].Closing)
	assert.True(t, doc.Balances[0].Amount.Equal(decimal.RequireFromString("50000.00")))
	assert.True(t, doc.Balances[1].Closing)

	require.Len(t, doc.Verifications, 2)
	ver := doc.Verifications[0]
	assert.Equal(t, "A", ver.Series)
	assert.Equal(t, "1", ver.Number)
	assert.Equal(t, "20240115", ver.Date)
	assert.Equal(t, "Hyra januari", ver.Description)
	require.Len(t, ver.Rows, 2)
	assert.Equal(t, "5010", ver.Rows[0].Account)
	assert.True(t, ver.Rows[0].Amount.Equal(decimal.RequireFromString("-10000.00")))

	// Rows attach to the most recent #VER, never an earlier one.
	require.Len(t, doc.Verifications[1].Rows, 2)
	assert.Equal(t, "3001", doc.Verifications[1].Rows[0].Account)
}

func TestTokenizerQuotedSegments(t *testing.T) {
	// Embedded spaces and commas inside quotes stay one token.
	doc, warnings := Parse(`#KONTO 1930 "Företags konto, huvud"`)
	assert.Empty(t, warnings)
	require.Len(t, doc.Accounts, 1)
	assert.Equal(t, "1930", doc.Accounts[0].Number)
	assert.Equal(t, "Företags konto, huvud", doc.Accounts[0].Name)
}

func TestOrphanTransIsIgnored(t *testing.T) {
	doc, _ := Parse(`#TRANS 1930 {} 100.00`)
	assert.Empty(t, doc.Verifications)
}

func TestUnbalancedVerificationIsPreserved(t *testing.T) {
	// The parser must not correct a broken double entry; whatever
	// imbalance the file carries is handed to the caller as-is.
	content := `#VER A 1 20240115 "Obalanserad"
#TRANS 5010 {} -10000.00
#TRANS 1930 {} 9000.00
`
	doc, warnings := Parse(content)
	assert.Empty(t, warnings)
	require.Len(t, doc.Verifications, 1)

	sum := decimal.Zero
	for _, row := range doc.Verifications[0].Rows {
		sum = sum.Add(row.Amount)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("-1000.00")), "imbalance must survive parsing, got %s", sum)
}

func TestMalformedLineBecomesWarning(t *testing.T) {
	content := `#KONTO 1930 "Företagskonto"
#IB 0 1930 not-a-number
#VER A 1 20240115 "Hyra"
#TRANS 5010 {} also-bad
#TRANS 1930 {} 100.00
`
	doc, warnings := Parse(content)

	require.Len(t, warnings, 2)
	assert.Equal(t, 2, warnings[0].Line)
	assert.Contains(t, warnings[0].Reason, "#IB")
	assert.Equal(t, 4, warnings[1].Line)
	assert.Contains(t, warnings[1].Reason, "#TRANS")

	// The broken lines are dropped, everything else survives.
	assert.Empty(t, doc.Balances)
	require.Len(t, doc.Verifications, 1)
	require.Len(t, doc.Verifications[0].Rows, 1)
	assert.Equal(t, "1930", doc.Verifications[0].Rows[0].Account)
}

func TestUnknownTagsAndBlankLinesAreSkipped(t *testing.T) {
	content := "\r\n#SIETYP 4\r\n#ADRESS \"Gatan 1\"\r\n#KONTO 2440 \"Leverantörsskulder\"\r\n"
	doc, warnings := Parse(content)
	assert.Empty(t, warnings)
	require.Len(t, doc.Accounts, 1)
	assert.Equal(t, "2440", doc.Accounts[0].Number)
}

func TestVerificationWithoutDescription(t *testing.T) {
	doc, warnings := Parse("#VER A 7 20240301\n#TRANS 1930 {} 10.00\n")
	assert.Empty(t, warnings)
	require.Len(t, doc.Verifications, 1)
	assert.Equal(t, "", doc.Verifications[0].Description)
	assert.Len(t, doc.Verifications[0].Rows, 1)
}

func TestNegativeYearOffset(t *testing.T) {
	doc, warnings := Parse(`#IB -1 1930 12345.67`)
	assert.Empty(t, warnings)
	require.Len(t, doc.Balances, 1)
	assert.Equal(t, -1, doc.Balances[0].Year)
}
