package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/domain"
	"ledgerd/internal/extract"
	"ledgerd/internal/ocr"
	"ledgerd/internal/parser"
	"ledgerd/internal/pipeline"
	"ledgerd/internal/port"
	"ledgerd/mocks"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}

func newPipeline(ocrEng *mocks.MockOCREngine, vision *mocks.MockVisionTier, text *mocks.MockTextTier) *pipeline.Pipeline {
	// Avoid wrapping nil mock pointers in non-nil interface values so the
	// pipeline's own nil-tier checks see a truly absent tier.
	var o port.OCREngine
	if ocrEng != nil {
		o = ocrEng
	}
	var v pipeline.VisionTier
	if vision != nil {
		v = vision
	}
	var tt pipeline.TextTier
	if text != nil {
		tt = text
	}
	return pipeline.New(extract.DefaultOptions(), o, v, tt)
}

// Clean text layer with a parseable line: no fallback tier runs and the
// deterministic parser produces the transaction.
func TestExtract_CleanTextNoFallback(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	vision := new(mocks.MockVisionTier)
	text := new(mocks.MockTextTier)

	doc := domain.RawDocument{
		Data:     []byte("date,description,amount\n01/15/2025 STARBUCKS COFFEE 4.95\n"),
		Filename: "statement.csv",
	}

	res, err := newPipeline(ocrEng, vision, text).Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, domain.FileTypeCSV, res.FileType)
	assert.False(t, res.Extraction.HadFallback)
	assert.GreaterOrEqual(t, res.Extraction.Confidence, 0.5)
	require.Len(t, res.Transactions, 1)

	tx := res.Transactions[0]
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("4.95")))
	assert.False(t, tx.NeedsAmountReview)
	assert.Equal(t, domain.SourcePrimary, tx.Source)
	assert.Equal(t, "dining", tx.Category)

	ocrEng.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
	vision.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything, mock.Anything)
	text.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

// Short text trips the gate but no tier applies: OCR skips non-image
// input and the deterministic parser succeeds, so the result must not
// report a fallback.
func TestExtract_GateTripWithoutTierRunReportsNoFallback(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	vision := new(mocks.MockVisionTier)
	text := new(mocks.MockTextTier)

	doc := domain.RawDocument{
		Data:     []byte("01/15/2025 STARBUCKS 4.95"),
		Filename: "statement.txt",
	}

	res, err := newPipeline(ocrEng, vision, text).Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, domain.SourcePrimary, res.Transactions[0].Source)
	assert.False(t, res.Extraction.HadFallback)
	assert.Empty(t, res.Extraction.Metadata.FallbackMethod)

	ocrEng.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
	text.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

// Image input: OCR runs; when OCR text yields no structured transactions
// the vision tier is invoked as the final tier.
func TestExtract_ImageEscalatesToVision(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	vision := new(mocks.MockVisionTier)
	text := new(mocks.MockTextTier)

	ocrEng.On("Recognize", mock.Anything, mock.Anything).
		Return(&port.OCRText{Text: "blurry header no line items", Confidence: 0.4}, nil)
	text.On("Parse", mock.Anything, mock.Anything).
		Return(&parser.Result{Model: "gpt-4o-mini"}, nil)
	vision.On("Parse", mock.Anything, mock.Anything, "image/jpeg").
		Return(&parser.Result{
			Model: "gpt-4o",
			Transactions: []domain.CandidateTransaction{
				{Description: "STARBUCKS COFFEE", Amount: decimal.RequireFromString("4.95"), Currency: "USD"},
			},
		}, nil)

	doc := domain.RawDocument{Data: jpegMagic, Filename: "scan.jpg"}
	res, err := newPipeline(ocrEng, vision, text).Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, res.Extraction.HadFallback)
	assert.Equal(t, "vision", res.Extraction.Metadata.FallbackMethod)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, domain.SourceVision, res.Transactions[0].Source)
}

// The AI text tier reports credits positive in its own convention; the
// pipeline negates its output into the canonical charges-positive form.
func TestExtract_TextTierSignNormalization(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	text := new(mocks.MockTextTier)

	text.On("Parse", mock.Anything, mock.Anything).
		Return(&parser.Result{
			Model: "gpt-4o-mini",
			Transactions: []domain.CandidateTransaction{
				{Description: "PAYMENT RECEIVED", Amount: decimal.RequireFromString("500.00"), Currency: "USD"},
			},
		}, nil)

	doc := domain.RawDocument{
		Data:     []byte("statement header\nPAYMENT RECEIVED -500.00"),
		Filename: "note.txt",
	}
	res, err := newPipeline(ocrEng, nil, text).Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.RequireFromString("-500.00")),
		"credit must be negative in canonical convention, got %s", res.Transactions[0].Amount)
	assert.Equal(t, domain.SourceAI, res.Transactions[0].Source)
	assert.False(t, res.Transactions[0].NeedsAmountReview, "500.00 appears in source text")
}

// AI fallback returning zero transactions is a valid outcome, not an error.
func TestExtract_ZeroTransactionsIsValid(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	text := new(mocks.MockTextTier)

	text.On("Parse", mock.Anything, mock.Anything).
		Return(&parser.Result{Model: "gpt-4o-mini"}, nil)

	doc := domain.RawDocument{Data: []byte("just a letter, nothing financial\n"), Filename: "letter.txt"}
	res, err := newPipeline(ocrEng, nil, text).Extract(context.Background(), doc)

	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
}

// Both OCR engines down on an image with a vision tier available: the
// import continues through vision instead of failing.
func TestExtract_OCRUnavailableContinuesToVision(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	vision := new(mocks.MockVisionTier)

	ocrEng.On("Recognize", mock.Anything, mock.Anything).
		Return(nil, ocr.NewUnavailableError("failover", errors.New("all engines unavailable")))
	ocrEng.On("Name").Return("failover")
	vision.On("Parse", mock.Anything, mock.Anything, mock.Anything).
		Return(&parser.Result{
			Transactions: []domain.CandidateTransaction{
				{Description: "COFFEE", Amount: decimal.RequireFromString("4.95"), Currency: "USD"},
			},
		}, nil)

	doc := domain.RawDocument{Data: jpegMagic, Filename: "scan.jpg"}
	res, err := newPipeline(ocrEng, vision, nil).Extract(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, domain.SourceVision, res.Transactions[0].Source)
}

// Both OCR engines down on an image with no vision tier: total failure.
func TestExtract_OCRUnavailableNoVisionFails(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)

	ocrEng.On("Recognize", mock.Anything, mock.Anything).
		Return(nil, ocr.NewUnavailableError("failover", errors.New("all engines unavailable")))
	ocrEng.On("Name").Return("failover")

	doc := domain.RawDocument{Data: jpegMagic, Filename: "scan.jpg"}
	_, err := newPipeline(ocrEng, nil, nil).Extract(context.Background(), doc)

	assert.Error(t, err)
}

// A transaction whose amount appears nowhere in the source text is flagged,
// not dropped.
func TestExtract_HallucinatedAmountFlagged(t *testing.T) {
	ocrEng := new(mocks.MockOCREngine)
	text := new(mocks.MockTextTier)

	text.On("Parse", mock.Anything, mock.Anything).
		Return(&parser.Result{
			Transactions: []domain.CandidateTransaction{
				{Description: "REAL CHARGE", Amount: decimal.RequireFromString("-12.34"), Currency: "USD"},
				{Description: "MADE UP", Amount: decimal.RequireFromString("-99.99"), Currency: "USD"},
			},
		}, nil)

	doc := domain.RawDocument{Data: []byte("prose mentioning 12.34 only\n"), Filename: "note.txt"}
	res, err := newPipeline(ocrEng, nil, text).Extract(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.False(t, res.Transactions[0].NeedsAmountReview)
	assert.True(t, res.Transactions[1].NeedsAmountReview)
	assert.Equal(t, 1, res.FlaggedCount)
}

// Deterministic classification: same bytes, same fileType and source.
func TestExtract_Deterministic(t *testing.T) {
	doc := domain.RawDocument{
		Data:     []byte("01/15/2025 STARBUCKS COFFEE 4.95\n01/16/2025 WHOLE FOODS 63.40\n"),
		Filename: "statement.txt",
	}

	p := newPipeline(new(mocks.MockOCREngine), nil, nil)
	first, err := p.Extract(context.Background(), doc)
	require.NoError(t, err)
	second, err := p.Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, first.FileType, second.FileType)
	assert.Equal(t, first.Extraction.Source, second.Extraction.Source)
	assert.Equal(t, len(first.Transactions), len(second.Transactions))
}
