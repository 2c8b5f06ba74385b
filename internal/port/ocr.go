package port

import "context"

// OCRText is the output of a single OCR backend call.
// Confidence is backend-reported when available; engines substitute a
// heuristic score when the backend does not report one.
type OCRText struct {
	Text       string
	Confidence float64
}

// OCREngine abstracts a single OCR backend. Implementations must be
// swappable so a failed primary backend can be retried on a secondary one.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (*OCRText, error)
	Name() string
}
