package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerd/internal/domain"
)

// ReferenceSet holds every amount literally present in a document's text,
// keyed by canonical absolute value (no separators, no sign).
type ReferenceSet map[string]struct{}

// Contains reports whether d's absolute value appears in the source text.
func (r ReferenceSet) Contains(d decimal.Decimal) bool {
	_, ok := r[canonicalKey(d)]
	return ok
}

func (r ReferenceSet) add(d decimal.Decimal) {
	r[canonicalKey(d)] = struct{}{}
}

func canonicalKey(d decimal.Decimal) string {
	// StringFixed keeps "250", "250.0" and "250.00" on one key.
	return d.Abs().StringFixed(2)
}

var (
	// standardAmountRe matches 123.45, $123.45 and 1,234.56 forms.
	standardAmountRe = regexp.MustCompile(`-?\$?\d{1,3}(?:,\d{3})*\.\d{2}\b|-?\$?\d+\.\d{2}\b`)

	// ocrAmountRe matches amount-shaped tokens where some digits came
	// back as letters (O for 0, l or I for 1, S for 5, B for 8).
	ocrAmountRe = regexp.MustCompile(`\$?[\dOolISB]{1,3}(?:,[\dOolISB]{3})*[.][\dOolISB]{2}\b`)

	// monthLineRe anchors the heuristic pass to date-prefixed table rows.
	monthLineRe = regexp.MustCompile(`(?i)^\s*(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}`)

	// looseNumberRe picks up bare numeric tokens on a date-anchored row,
	// including comma-as-decimal forms.
	looseNumberRe = regexp.MustCompile(`\d{1,6}[.,]\d{2}\b`)

	ocrDigitReplacer = strings.NewReplacer("O", "0", "o", "0", "l", "1", "I", "1", "S", "5", "B", "8")
)

// ExtractReferenceAmounts builds the set of amounts that literally appear
// in the source text, using three layered passes. Values shaped like
// store or account numbers are excluded.
func ExtractReferenceAmounts(text string) ReferenceSet {
	ref := ReferenceSet{}
	standardAmounts(text, ref)
	ocrTolerantAmounts(text, ref)
	dateAnchoredAmounts(text, ref)
	return ref
}

// standardAmounts collects plainly formatted amounts.
func standardAmounts(text string, ref ReferenceSet) {
	for _, m := range standardAmountRe.FindAllString(text, -1) {
		if d, ok := parseAmountToken(m); ok && !looksLikeStoreNumber(d) {
			ref.add(d)
		}
	}
}

// ocrTolerantAmounts collects amounts where stray letters adjacent to
// digits are treated as probable digit misreads.
func ocrTolerantAmounts(text string, ref ReferenceSet) {
	for _, m := range ocrAmountRe.FindAllString(text, -1) {
		fixed := ocrDigitReplacer.Replace(m)
		if d, ok := parseAmountToken(fixed); ok && !looksLikeStoreNumber(d) {
			ref.add(d)
		}
	}
}

// dateAnchoredAmounts scans month-name-prefixed rows for numeric tokens
// the stricter passes miss, such as comma-as-decimal amounts.
func dateAnchoredAmounts(text string, ref ReferenceSet) {
	for _, line := range strings.Split(text, "\n") {
		if !monthLineRe.MatchString(line) {
			continue
		}
		for _, m := range looseNumberRe.FindAllString(line, -1) {
			tok := strings.Replace(m, ",", ".", 1)
			if d, ok := parseAmountToken(tok); ok && !looksLikeStoreNumber(d) {
				ref.add(d)
			}
		}
	}
}

// looksLikeStoreNumber reports whether a value is shaped like a store or
// account number rather than a transaction amount: a round 4-5 digit
// integer printed with .00 cents.
func looksLikeStoreNumber(d decimal.Decimal) bool {
	abs := d.Abs()
	if !abs.Equal(abs.Truncate(0)) {
		return false
	}
	thousand := decimal.NewFromInt(1000)
	hundredThousand := decimal.NewFromInt(100000)
	return abs.GreaterThanOrEqual(thousand) && abs.LessThan(hundredThousand)
}

func parseAmountToken(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Apply assigns NeedsAmountReview on every candidate: true when the
// amount appears nowhere in the source text, false otherwise. When the
// source yielded no reference amounts at all, validation cannot penalize
// anything and marks every candidate false; the second return value lets
// the caller surface that as a warning.
func Apply(ref ReferenceSet, txs []domain.CandidateTransaction) (flagged int, hasReference bool) {
	hasReference = len(ref) > 0
	for i := range txs {
		if !hasReference {
			txs[i].NeedsAmountReview = false
			continue
		}
		if ref.Contains(txs[i].Amount) {
			txs[i].NeedsAmountReview = false
		} else {
			txs[i].NeedsAmountReview = true
			flagged++
		}
	}
	return flagged, hasReference
}
