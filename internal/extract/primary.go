// Package extract implements the direct (non-network) extraction tier and the
// confidence gate that decides whether fallback tiers must run.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"ledgerd/internal/domain"
)

const (
	// Chars per page at which PDF text-layer confidence reaches its cap.
	denseTextChars = 500
	// Chars per page below which a PDF is considered a scan.
	scannedThreshold = 50

	pdfConfidenceCap = 0.9
)

// Primary extracts text without calling any network service. It is a pure
// function of the input bytes: library failures are converted into
// zero-confidence results with a warning and never propagate.
func Primary(doc domain.RawDocument, fileType domain.FileType) *domain.ExtractionResult {
	start := time.Now()
	res := &domain.ExtractionResult{
		Source: domain.SourcePrimary,
		Metadata: domain.ExtractionMetadata{
			FileType:  fileType,
			PageCount: 0,
		},
	}

	switch fileType {
	case domain.FileTypePDF:
		extractPDF(doc.Data, res)
	case domain.FileTypeCSV, domain.FileTypeText:
		extractPlain(doc.Data, res)
	case domain.FileTypeImage:
		res.Metadata.PrimaryMethod = "none"
		res.Confidence = 0
		res.Warnings = append(res.Warnings, "image input: OCR required")
	default:
		extractUnknown(doc.Data, res)
	}

	res.RebuildFullText()
	res.ClampConfidence()
	res.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return res
}

// extractPDF pulls the embedded text layer. The pdf library panics on some
// malformed files, so the whole pass runs under recover.
func extractPDF(data []byte, res *domain.ExtractionResult) {
	res.Metadata.PrimaryMethod = "pdf-text"

	defer func() {
		if r := recover(); r != nil {
			res.Pages = nil
			res.Confidence = 0
			res.Warnings = append(res.Warnings, fmt.Sprintf("pdf text extraction panicked: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		res.Confidence = 0
		res.Warnings = append(res.Warnings, fmt.Sprintf("opening pdf: %v", err))
		return
	}

	pageCount := reader.NumPage()
	if pageCount < 1 {
		pageCount = 1
	}
	res.Metadata.PageCount = pageCount

	totalChars := 0
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		res.Pages = append(res.Pages, domain.PageText{Number: i, Text: text})
		totalChars += len(text)
	}

	if totalChars == 0 {
		res.Confidence = 0
		res.Warnings = append(res.Warnings, "no text layer found: likely scanned PDF")
		return
	}

	charsPerPage := totalChars / pageCount
	res.Confidence = pdfConfidenceCap * float64(charsPerPage) / float64(denseTextChars)
	if res.Confidence > pdfConfidenceCap {
		res.Confidence = pdfConfidenceCap
	}
	if charsPerPage < scannedThreshold {
		res.Warnings = append(res.Warnings, "very little text per page: likely scanned PDF")
	}
}

// extractPlain decodes csv/text input as UTF-8. Tabular-looking content
// (commas and newlines) gets higher confidence than free text.
func extractPlain(data []byte, res *domain.ExtractionResult) {
	res.Metadata.PrimaryMethod = "utf8-decode"
	res.Metadata.PageCount = 1

	text := decodeUTF8(data)
	if text == "" {
		res.Confidence = 0
		res.Warnings = append(res.Warnings, "empty or undecodable text input")
		return
	}

	res.Pages = []domain.PageText{{Number: 1, Text: text}}
	if strings.Contains(text, ",") && strings.Contains(text, "\n") {
		res.Confidence = 0.9
	} else {
		res.Confidence = 0.5
	}
}

// extractUnknown attempts a plain UTF-8 decode of unclassified input.
func extractUnknown(data []byte, res *domain.ExtractionResult) {
	res.Metadata.PrimaryMethod = "utf8-decode"
	res.Metadata.PageCount = 1

	text := decodeUTF8(data)
	if text == "" {
		res.Confidence = 0
		res.Warnings = append(res.Warnings, "unknown file type with no decodable text")
		return
	}
	res.Pages = []domain.PageText{{Number: 1, Text: text}}
	res.Confidence = 0.3
}

func decodeUTF8(data []byte) string {
	if len(data) == 0 || !utf8.Valid(data) {
		return ""
	}
	return strings.TrimSpace(string(data))
}
