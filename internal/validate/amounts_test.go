package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExtractReferenceAmounts_Standard(t *testing.T) {
	ref := ExtractReferenceAmounts("01/15/2025 STARBUCKS COFFEE 4.95\nRENT $1,850.25")

	assert.True(t, ref.Contains(dec("4.95")))
	assert.True(t, ref.Contains(dec("1850.25")))
	assert.True(t, ref.Contains(dec("-4.95")), "membership ignores sign")
	assert.False(t, ref.Contains(dec("9.99")))
}

func TestExtractReferenceAmounts_OCRTolerant(t *testing.T) {
	// OCR read 40.00 as 4O.OO and 15.00 as lS.OO.
	ref := ExtractReferenceAmounts("GAS STATION 4O.OO\nPARKING lS.OO")

	assert.True(t, ref.Contains(dec("40.00")))
	assert.True(t, ref.Contains(dec("15.00")))
}

func TestExtractReferenceAmounts_DateAnchored(t *testing.T) {
	// Comma-as-decimal amount on a month-prefixed row is only caught by
	// the heuristic pass.
	ref := ExtractReferenceAmounts("Jan 15 GROCERY MART 82,17")

	assert.True(t, ref.Contains(dec("82.17")))
}

func TestExtractReferenceAmounts_Empty(t *testing.T) {
	assert.Empty(t, ExtractReferenceAmounts("no numbers in this text"))
	assert.Empty(t, ExtractReferenceAmounts(""))
}

func TestLooksLikeStoreNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"999.00", false},
		{"1000.00", true},
		{"4217.00", true},
		{"99999.00", true},
		{"100000.00", false},
		{"1234.50", false},
		{"12.00", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, looksLikeStoreNumber(dec(tt.in)), "value %s", tt.in)
	}
}

func TestExtractReferenceAmounts_FiltersStoreNumbers(t *testing.T) {
	ref := ExtractReferenceAmounts("STORE #4217 4217.00\nTOTAL 63.40")

	assert.False(t, ref.Contains(dec("4217.00")))
	assert.True(t, ref.Contains(dec("63.40")))
}

func TestApply_FlagsMismatches(t *testing.T) {
	ref := ExtractReferenceAmounts("01/15/2025 STARBUCKS COFFEE 4.95")
	txs := []domain.CandidateTransaction{
		{Description: "STARBUCKS COFFEE", Amount: dec("4.95")},
		{Description: "HALLUCINATED", Amount: dec("123.45")},
	}

	flagged, hasReference := Apply(ref, txs)

	assert.True(t, hasReference)
	assert.Equal(t, 1, flagged)
	assert.False(t, txs[0].NeedsAmountReview)
	assert.True(t, txs[1].NeedsAmountReview)
}

func TestApply_NoReferenceAmountsMarksAllValid(t *testing.T) {
	txs := []domain.CandidateTransaction{
		{Description: "A", Amount: dec("10.00"), NeedsAmountReview: true},
		{Description: "B", Amount: dec("20.00")},
	}

	flagged, hasReference := Apply(ReferenceSet{}, txs)

	require.False(t, hasReference)
	assert.Zero(t, flagged)
	assert.False(t, txs[0].NeedsAmountReview)
	assert.False(t, txs[1].NeedsAmountReview)
}
