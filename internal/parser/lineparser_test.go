package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines_ChargeLine(t *testing.T) {
	txs := ParseLines("01/15/2025 STARBUCKS COFFEE 4.95")
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("4.95")), "got %s", tx.Amount)
	assert.Equal(t, "STARBUCKS COFFEE", tx.Description)
	require.NotNil(t, tx.Date)
	assert.Equal(t, "2025-01-15", *tx.Date)
	require.NotNil(t, tx.RawLineText)
	assert.Equal(t, "01/15/2025 STARBUCKS COFFEE 4.95", *tx.RawLineText)
}

func TestParseLines_CreditSuffix(t *testing.T) {
	txs := ParseLines("02/01/2025 PAYMENT THANK YOU 250.00 CR")
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-250.00")), "got %s", txs[0].Amount)
}

func TestParseLines_NegativeAmount(t *testing.T) {
	txs := ParseLines("02/01/2025 REFUND ACME -19.99")
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-19.99")))
}

func TestParseLines_ThousandsAndDollar(t *testing.T) {
	txs := ParseLines("03/10/2025 RENT PAYMENT $1,850.00")
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("1850.00")))
}

func TestParseLines_MonthNameDate(t *testing.T) {
	txs := ParseLines("Jan 15, 2025 GROCERY MART 82.17")
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].Date)
	assert.Equal(t, "2025-01-15", *txs[0].Date)
}

func TestParseLines_MultipleAndNoise(t *testing.T) {
	text := `ACME BANK STATEMENT
Period: January 2025

01/15/2025 STARBUCKS COFFEE 4.95
01/16/2025 WHOLE FOODS MARKET 63.40
Closing balance information follows
`
	txs := ParseLines(text)
	assert.Len(t, txs, 2)
}

func TestParseLines_NoMatches(t *testing.T) {
	assert.Nil(t, ParseLines("no transactions here\njust prose"))
	assert.Nil(t, ParseLines(""))
}

func TestParseLines_ZeroAmountSkipped(t *testing.T) {
	assert.Nil(t, ParseLines("01/15/2025 VOIDED ENTRY 0.00"))
}
