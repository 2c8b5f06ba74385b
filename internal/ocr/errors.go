package ocr

import "fmt"

// UnavailableError indicates an OCR engine could not be reached at all:
// the hosted service refused the connection or the local binary is not
// installed. It is distinct from a recognition failure on a bad image.
type UnavailableError struct {
	Engine string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ocr engine %s unavailable: %v", e.Engine, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// NewUnavailableError wraps err as an engine-unavailable condition.
func NewUnavailableError(engine string, err error) *UnavailableError {
	return &UnavailableError{Engine: engine, Err: err}
}
