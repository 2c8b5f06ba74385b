package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerd/internal/domain"
)

func TestPrimary_CSVTabular(t *testing.T) {
	doc := domain.RawDocument{Data: []byte("date,description,amount\n01/15/2025,STARBUCKS COFFEE,4.95\n")}
	res := Primary(doc, domain.FileTypeCSV)

	assert.Equal(t, domain.SourcePrimary, res.Source)
	assert.Equal(t, 0.9, res.Confidence)
	assert.Len(t, res.Pages, 1)
	assert.Contains(t, res.FullText, "STARBUCKS")
	assert.Equal(t, "utf8-decode", res.Metadata.PrimaryMethod)
}

func TestPrimary_PlainTextWithoutDelimiters(t *testing.T) {
	doc := domain.RawDocument{Data: []byte("statement period January 2025")}
	res := Primary(doc, domain.FileTypeText)
	assert.Equal(t, 0.5, res.Confidence)
}

func TestPrimary_EmptyText(t *testing.T) {
	res := Primary(domain.RawDocument{Data: nil}, domain.FileTypeText)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Pages)
	assert.Empty(t, res.FullText)
	assert.NotEmpty(t, res.Warnings)
}

func TestPrimary_ImageSkipsExtraction(t *testing.T) {
	res := Primary(domain.RawDocument{Data: []byte{0xFF, 0xD8, 0xFF}}, domain.FileTypeImage)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.FullText)
	assert.Equal(t, "none", res.Metadata.PrimaryMethod)
	assert.Contains(t, strings.Join(res.Warnings, " "), "OCR required")
}

func TestPrimary_UnknownFallsBackToUTF8Decode(t *testing.T) {
	res := Primary(domain.RawDocument{Data: []byte("some unidentified content")}, domain.FileTypeUnknown)
	assert.Equal(t, 0.3, res.Confidence)

	res = Primary(domain.RawDocument{Data: []byte{0xC3, 0x28}}, domain.FileTypeUnknown)
	assert.Zero(t, res.Confidence)
}

func TestPrimary_MalformedPDFNeverPanics(t *testing.T) {
	res := Primary(domain.RawDocument{Data: []byte("%PDF-1.7 truncated garbage")}, domain.FileTypePDF)
	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Warnings)
	assert.Empty(t, res.FullText)
}

func TestPrimary_ConfidenceAlwaysInRange(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte(strings.Repeat("x,y\n", 10000)),
		{0x00, 0x01},
		[]byte("%PDF-"),
	}
	for _, ft := range []domain.FileType{
		domain.FileTypePDF, domain.FileTypeImage, domain.FileTypeCSV,
		domain.FileTypeText, domain.FileTypeUnknown,
	} {
		for _, data := range inputs {
			res := Primary(domain.RawDocument{Data: data}, ft)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
			if len(res.Pages) == 0 {
				assert.Empty(t, res.FullText)
			}
		}
	}
}
