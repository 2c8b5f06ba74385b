package ocr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ledgerd/internal/ocr"
	"ledgerd/internal/port"
	"ledgerd/mocks"
)

func TestFailoverEngine_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockOCREngine)
	e2 := new(mocks.MockOCREngine)

	image := []byte{0xFF, 0xD8, 0xFF}
	e1.On("Recognize", mock.Anything, image).Return(&port.OCRText{Text: "TOTAL 42.00", Confidence: 0.8}, nil)

	eng := ocr.NewFailoverEngine(e1, e2)
	out, err := eng.Recognize(context.Background(), image)

	assert.NoError(t, err)
	assert.Equal(t, "TOTAL 42.00", out.Text)
	assert.Equal(t, 0.8, out.Confidence)
	e2.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestFailoverEngine_FirstUnavailable_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockOCREngine)
	e2 := new(mocks.MockOCREngine)

	image := []byte("img")
	e1.On("Recognize", mock.Anything, image).Return(nil, ocr.NewUnavailableError("hosted", errors.New("connection refused")))
	e1.On("Name").Return("hosted")
	e2.On("Recognize", mock.Anything, image).Return(&port.OCRText{Text: "01/15/2025 COFFEE 4.95", Confidence: 0.7}, nil)

	eng := ocr.NewFailoverEngine(e1, e2)
	out, err := eng.Recognize(context.Background(), image)

	assert.NoError(t, err)
	assert.Equal(t, "01/15/2025 COFFEE 4.95", out.Text)
}

func TestFailoverEngine_AllUnavailable(t *testing.T) {
	e1 := new(mocks.MockOCREngine)
	e2 := new(mocks.MockOCREngine)

	image := []byte("img")
	e1.On("Recognize", mock.Anything, image).Return(nil, ocr.NewUnavailableError("hosted", errors.New("connection refused")))
	e1.On("Name").Return("hosted")
	e2.On("Recognize", mock.Anything, image).Return(nil, ocr.NewUnavailableError("tesseract", errors.New("executable not found")))
	e2.On("Name").Return("tesseract")

	eng := ocr.NewFailoverEngine(e1, e2)
	out, err := eng.Recognize(context.Background(), image)

	assert.Nil(t, out)
	var unavail *ocr.UnavailableError
	assert.ErrorAs(t, err, &unavail)
}

func TestFailoverEngine_RecognitionFailureIsNotUnavailable(t *testing.T) {
	e1 := new(mocks.MockOCREngine)

	image := []byte("img")
	e1.On("Recognize", mock.Anything, image).Return(nil, errors.New("unsupported image format"))
	e1.On("Name").Return("hosted")

	eng := ocr.NewFailoverEngine(e1)
	_, err := eng.Recognize(context.Background(), image)

	assert.Error(t, err)
	var unavail *ocr.UnavailableError
	assert.False(t, errors.As(err, &unavail))
}

func TestFailoverEngine_FillsHeuristicConfidence(t *testing.T) {
	e1 := new(mocks.MockOCREngine)

	image := []byte("img")
	e1.On("Recognize", mock.Anything, image).Return(&port.OCRText{Text: "01/15/2025 STARBUCKS $4.95"}, nil)

	eng := ocr.NewFailoverEngine(e1)
	out, err := eng.Recognize(context.Background(), image)

	assert.NoError(t, err)
	assert.Greater(t, out.Confidence, 0.2)
	assert.LessOrEqual(t, out.Confidence, 1.0)
}
