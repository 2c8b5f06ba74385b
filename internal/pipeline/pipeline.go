// Package pipeline orchestrates the tiered extraction flow: classify,
// primary extraction, confidence-gated OCR, then the deterministic line
// parser with vision/AI model tiers as last resorts. Tier failures are
// recovered locally; only a total failure across all tiers surfaces as an
// error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ledgerd/internal/categorize"
	"ledgerd/internal/classify"
	"ledgerd/internal/domain"
	"ledgerd/internal/extract"
	"ledgerd/internal/ocr"
	"ledgerd/internal/parser"
	"ledgerd/internal/port"
	"ledgerd/internal/validate"
)

// ocrSeparator marks the boundary when primary and OCR text are retained
// together.
const ocrSeparator = "\n----- OCR TEXT -----\n"

// agreementBoost is added to the better tier's confidence when primary and
// OCR both produced text; agreement is a stronger signal than either alone.
const (
	agreementBoost = 0.15
	agreementCap   = 0.95
)

// VisionTier extracts transactions straight from an image.
type VisionTier interface {
	Parse(ctx context.Context, image []byte, imageType string) (*parser.Result, error)
}

// TextTier extracts transactions from recovered text.
type TextTier interface {
	Parse(ctx context.Context, text string) (*parser.Result, error)
}

// Result is the pipeline's complete output for one document.
type Result struct {
	FileType     domain.FileType
	Extraction   *domain.ExtractionResult
	Transactions []domain.StagedTransaction
	// FlaggedCount is how many transactions failed amount corroboration.
	FlaggedCount int
	Warnings     []string
}

// Pipeline runs the extraction flow. The zero value is not usable; construct
// with New.
type Pipeline struct {
	opts   extract.Options
	ocr    port.OCREngine
	vision VisionTier
	text   TextTier
}

// New creates a pipeline. Any of ocrEngine, vision and text may be nil, in
// which case the corresponding tier is skipped with a warning.
func New(opts extract.Options, ocrEngine port.OCREngine, vision VisionTier, text TextTier) *Pipeline {
	return &Pipeline{opts: opts, ocr: ocrEngine, vision: vision, text: text}
}

// Extract runs the full tiered flow over one raw document.
//
// An error return means no tier produced anything usable: the caller should
// mark the import failed. A nil-error result with zero transactions is a
// valid outcome.
func (p *Pipeline) Extract(ctx context.Context, doc domain.RawDocument) (*Result, error) {
	fileType := classify.Classify(doc.Data, doc.Filename, doc.MIMEHint)
	ext := extract.Primary(doc, fileType)

	res := &Result{FileType: fileType, Extraction: ext}
	res.Warnings = append(res.Warnings, ext.Warnings...)

	if extract.NeedsFallback(p.opts, ext.Confidence, len(ext.FullText), fileType) {
		if err := p.runOCRTier(ctx, doc, fileType, res); err != nil {
			return nil, err
		}
	}

	candidates, source, err := p.parseTransactions(ctx, doc, fileType, res)
	if err != nil {
		return nil, err
	}
	ext.Source = source

	ref := validate.ExtractReferenceAmounts(ext.FullText)
	flagged, hasReference := validate.Apply(ref, candidates)
	res.FlaggedCount = flagged
	if !hasReference && len(candidates) > 0 {
		res.Warnings = append(res.Warnings, "no reference amounts in source text: amount validation skipped")
	}

	for _, c := range candidates {
		merchant := ""
		if c.Merchant != nil {
			merchant = *c.Merchant
		}
		res.Transactions = append(res.Transactions, domain.StagedTransaction{
			CandidateTransaction: c,
			Category:             categorize.Categorize(merchant, c.Description),
			Source:               source,
		})
	}
	return res, nil
}

// runOCRTier recognizes image bytes and merges the result into the
// extraction. An unavailable OCR stack is fatal only when there is no
// primary text to fall back on and no vision tier to try.
func (p *Pipeline) runOCRTier(ctx context.Context, doc domain.RawDocument, fileType domain.FileType, res *Result) error {
	ext := res.Extraction

	if p.ocr == nil {
		res.Warnings = append(res.Warnings, "no OCR engine configured")
		return p.checkTextlessDeadEnd(fileType, ext)
	}
	if fileType != domain.FileTypeImage && fileType != domain.FileTypePDF {
		// Text-origin input gained nothing from OCR; the model text
		// tier handles it below.
		return nil
	}

	out, err := p.ocr.Recognize(ctx, doc.Data)
	if err != nil {
		var unavail *ocr.UnavailableError
		if errors.As(err, &unavail) {
			log.Printf("pipeline.Extract: ocr unavailable: %v", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("ocr unavailable: %v", unavail.Err))
			return p.checkTextlessDeadEnd(fileType, ext)
		}
		return fmt.Errorf("ocr tier: %w", err)
	}

	if out.Text == "" {
		res.Warnings = append(res.Warnings, "ocr produced no text")
		return nil
	}

	ext.HadFallback = true
	ext.Metadata.FallbackMethod = "ocr"
	if ext.FullText != "" {
		// Keep both: agreement between the text layer and OCR is a
		// stronger signal than either alone.
		combined := ext.FullText + ocrSeparator + out.Text
		ext.Pages = []domain.PageText{{Number: 1, Text: combined}}
		conf := ext.Confidence
		if out.Confidence > conf {
			conf = out.Confidence
		}
		ext.Confidence = conf + agreementBoost
		if ext.Confidence > agreementCap {
			ext.Confidence = agreementCap
		}
	} else {
		ext.Pages = []domain.PageText{{Number: 1, Text: out.Text}}
		ext.Confidence = out.Confidence
	}
	ext.RebuildFullText()
	ext.ClampConfidence()
	return nil
}

// checkTextlessDeadEnd decides whether the import can continue after the
// OCR tier failed. Image inputs still have the vision tier; anything else
// needs primary text to proceed.
func (p *Pipeline) checkTextlessDeadEnd(fileType domain.FileType, ext *domain.ExtractionResult) error {
	if ext.FullText != "" {
		return nil
	}
	if fileType == domain.FileTypeImage && p.vision != nil {
		return nil
	}
	return fmt.Errorf("no text recovered and no further tier available for %s input", fileType)
}

// parseTransactions turns recovered text (or the image itself) into
// candidate transactions, escalating deterministic parse -> AI text tier ->
// vision tier. All outputs are normalized to the canonical sign convention
// (charges positive, credits negative) before returning.
func (p *Pipeline) parseTransactions(ctx context.Context, doc domain.RawDocument, fileType domain.FileType, res *Result) ([]domain.CandidateTransaction, domain.ExtractionSource, error) {
	ext := res.Extraction

	if ext.FullText != "" {
		txs := parser.ParseLines(ext.FullText)
		if len(txs) > 0 {
			source := domain.SourcePrimary
			if ext.Metadata.FallbackMethod == "ocr" {
				source = domain.SourceOCR
			}
			return txs, source, nil
		}

		if p.text != nil {
			out, err := p.text.Parse(ctx, ext.FullText)
			if err != nil {
				return nil, "", fmt.Errorf("ai text tier: %w", err)
			}
			if out.ParseError != "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("ai text tier: %s", out.ParseError))
			}
			if len(out.Transactions) > 0 || fileType != domain.FileTypeImage {
				ext.Metadata.FallbackMethod = "ai-text"
				ext.HadFallback = true
				return negateAll(out.Transactions), domain.SourceAI, nil
			}
		} else {
			res.Warnings = append(res.Warnings, "no text model configured")
		}
	}

	// Final tier, image-origin documents only: hand the image itself to a
	// vision model.
	if fileType == domain.FileTypeImage && p.vision != nil {
		out, err := p.vision.Parse(ctx, doc.Data, classify.ImageMIME(doc.Data))
		if err != nil {
			return nil, "", fmt.Errorf("vision tier: %w", err)
		}
		if out.ParseError != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("vision tier: %s", out.ParseError))
		}
		ext.Metadata.FallbackMethod = "vision"
		ext.HadFallback = true
		return out.Transactions, domain.SourceVision, nil
	}

	if ext.FullText == "" {
		return nil, "", fmt.Errorf("no text recovered from %s input", fileType)
	}
	// Text existed but nothing parsed and no model tier could run: a
	// valid zero-transaction outcome.
	return nil, ext.Source, nil
}

// negateAll flips the AI text tier's debits-negative output into the
// canonical charges-positive convention.
func negateAll(txs []domain.CandidateTransaction) []domain.CandidateTransaction {
	for i := range txs {
		txs[i].Amount = txs[i].Amount.Neg()
	}
	return txs
}
