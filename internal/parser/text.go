package parser

import (
	"context"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

// maxTextChars bounds how much recovered text is sent to the model.
const maxTextChars = 12000

// TextParser is the AI tier for recovered-but-messy text, used when the
// deterministic line parser finds nothing.
type TextParser struct {
	model port.ChatModel
}

// NewTextParser creates a text tier backed by the given model.
func NewTextParser(model port.ChatModel) *TextParser {
	return &TextParser{model: model}
}

// Parse extracts transactions from text. Output amounts keep this tier's
// debits-negative convention; the pipeline negates them before merging.
// Candidates missing a description or carrying a zero amount are dropped,
// unrepairable dates become null.
func (p *TextParser) Parse(ctx context.Context, text string) (*Result, error) {
	if len(text) > maxTextChars {
		text = truncateOnRuneBoundary(text, maxTextChars)
	}

	req := port.CompletionRequest{
		UserPrompt: BuildTextPrompt(),
		Text:       text,
	}

	out, parseErr, err := completeAndDecode(ctx, p.model, req)
	if err != nil {
		return nil, err
	}

	res := &Result{Model: p.model.Model(), ParseError: parseErr}
	if out == nil {
		return res, nil
	}

	for _, mt := range out.Transactions {
		if mt.Description == "" {
			continue
		}
		amount := decimal.NewFromFloat(mt.Amount)
		if amount.IsZero() {
			continue
		}
		res.Transactions = append(res.Transactions, domain.CandidateTransaction{
			Date:        NormalizeDate(mt.Date),
			Merchant:    mt.Merchant,
			Description: mt.Description,
			Amount:      amount,
			Currency:    currencyOrDefault(mt.Currency),
		})
	}
	return res, nil
}

// truncateOnRuneBoundary cuts text to at most max bytes without splitting a
// multi-byte rune.
func truncateOnRuneBoundary(text string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
