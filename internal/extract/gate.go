package extract

import "ledgerd/internal/domain"

// Default gate thresholds. Length alone is not a sufficient signal: a short
// but clean statement header can exceed the character threshold while
// containing no transactions, so low confidence, short text and image input
// each independently trigger escalation.
const (
	DefaultMinConfidence = 0.3
	DefaultMinTextLength = 50
)

// Options controls the extraction pipeline's fallback behavior.
type Options struct {
	MinConfidence  float64
	MinTextLength  int
	EnableFallback bool
}

// DefaultOptions returns the standard pipeline options.
func DefaultOptions() Options {
	return Options{
		MinConfidence:  DefaultMinConfidence,
		MinTextLength:  DefaultMinTextLength,
		EnableFallback: true,
	}
}

// NeedsFallback is the confidence gate: a pure decision over the primary
// tier's confidence, the extracted text length, and the file type.
func NeedsFallback(opts Options, confidence float64, textLength int, fileType domain.FileType) bool {
	if !opts.EnableFallback {
		return false
	}
	return confidence < opts.MinConfidence ||
		textLength < opts.MinTextLength ||
		fileType == domain.FileTypeImage
}
