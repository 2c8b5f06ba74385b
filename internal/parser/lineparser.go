package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerd/internal/domain"
)

// transactionLineRe matches a line with: date ... description ... amount.
// Groups: (1) date, (2) description, (3) amount with optional sign/$,
// (4) optional CR/DR suffix.
var transactionLineRe = regexp.MustCompile(
	`(?i)^\s*` +
		`(\d{1,2}[/\-.]\d{1,2}(?:[/\-.]\d{2,4})?|\d{4}[/\-]\d{2}[/\-]\d{2}|` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:[,\s]+\d{2,4})?|` +
		`\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?(?:[,\s]+\d{2,4})?)` +
		`\s+(.+?)\s+` +
		`(-?\$?\d{1,3}(?:,\d{3})*\.\d{2})\s*(CR|DR)?\s*$`,
)

// ParseLines runs the deterministic date-description-amount pattern over
// extracted text. Amounts come out in the canonical convention: charges
// and purchases positive, credits and payments negative. Returns nil when
// nothing matches; the caller escalates to a model tier in that case.
func ParseLines(text string) []domain.CandidateTransaction {
	var txs []domain.CandidateTransaction

	for _, line := range strings.Split(text, "\n") {
		m := transactionLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		dateStr := strings.TrimSpace(m[1])
		description := strings.TrimSpace(m[2])
		amount, ok := parseLineAmount(m[3], m[4])
		if !ok || amount.IsZero() {
			continue
		}

		raw := strings.TrimSpace(line)
		tx := domain.CandidateTransaction{
			Date:        NormalizeDate(&dateStr),
			Description: description,
			Amount:      amount,
			Currency:    "USD",
			RawLineText: &raw,
		}
		if description != "" {
			merchant := description
			tx.Merchant = &merchant
		}
		txs = append(txs, tx)
	}

	return txs
}

// parseLineAmount converts a matched amount string into a signed decimal.
// Statement lines print charges unsigned; a leading minus or a CR suffix
// marks a credit.
func parseLineAmount(s, suffix string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	credit := strings.EqualFold(suffix, "CR")
	if strings.HasPrefix(s, "-") {
		credit = true
		s = s[1:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if credit {
		d = d.Neg()
	}
	return d, true
}
