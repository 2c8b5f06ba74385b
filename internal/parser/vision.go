package parser

import (
	"context"

	"github.com/shopspring/decimal"

	"ledgerd/internal/domain"
	"ledgerd/internal/port"
)

// Result is a fallback tier's parse outcome. ParseError is set when the
// model output stayed malformed after the repair round; the transaction
// list is empty in that case.
type Result struct {
	Transactions []domain.CandidateTransaction
	Model        string
	ParseError   string
}

// VisionParser is the last-resort tier for image-origin documents. It
// sends the image itself to a vision-capable model, not pre-extracted
// text.
type VisionParser struct {
	model port.ChatModel
}

// NewVisionParser creates a vision tier backed by the given model.
func NewVisionParser(model port.ChatModel) *VisionParser {
	return &VisionParser{model: model}
}

// Parse extracts transactions from an image. Output amounts are already
// canonical (charges positive, credits negative).
func (p *VisionParser) Parse(ctx context.Context, image []byte, imageType string) (*Result, error) {
	req := port.CompletionRequest{
		UserPrompt: BuildVisionPrompt(),
		Image:      image,
		ImageType:  imageType,
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
		res.Transactions = append(res.Transactions, domain.CandidateTransaction{
			Date:        NormalizeDate(mt.Date),
			Merchant:    mt.Merchant,
			Description: mt.Description,
			Amount:      decimal.NewFromFloat(mt.Amount),
			Currency:    currencyOrDefault(mt.Currency),
		})
	}
	return res, nil
}

func currencyOrDefault(c *string) string {
	if c == nil || *c == "" {
		return "USD"
	}
	return *c
}
