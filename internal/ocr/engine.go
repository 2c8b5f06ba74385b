package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ledgerd/internal/port"
)

// FailoverEngine tries the hosted engine first and falls back to the local
// one when the hosted engine cannot be reached. It implements
// port.OCREngine.
type FailoverEngine struct {
	engines []port.OCREngine
}

// NewFailoverEngine creates a FailoverEngine from an ordered list of engines.
func NewFailoverEngine(engines ...port.OCREngine) *FailoverEngine {
	return &FailoverEngine{engines: engines}
}

func (f *FailoverEngine) Name() string { return "failover" }

func (f *FailoverEngine) Recognize(ctx context.Context, image []byte) (*port.OCRText, error) {
	var lastErr error
	allUnavailable := true

	for _, eng := range f.engines {
		out, err := eng.Recognize(ctx, image)
		if err == nil {
			if out.Confidence == 0 && out.Text != "" {
				out.Confidence = heuristicConfidence(out.Text)
			}
			return out, nil
		}

		log.Printf("ocr.FailoverEngine: %s failed: %v", eng.Name(), err)
		lastErr = err

		var unavail *UnavailableError
		if !errors.As(err, &unavail) {
			allUnavailable = false
		}
	}

	if lastErr == nil {
		return nil, NewUnavailableError("failover", fmt.Errorf("no engines configured"))
	}
	if allUnavailable {
		return nil, NewUnavailableError("failover", fmt.Errorf("all engines unavailable: %w", lastErr))
	}
	return nil, fmt.Errorf("all ocr engines failed: %w", lastErr)
}
