package ocr

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/config"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, _ []byte, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, s.stderr, s.err
}

func TestTesseractEngine_Recognize(t *testing.T) {
	runner := &stubRunner{stdout: []byte("TOTAL 12.50\n\n")}
	eng := NewTesseractEngineWithRunner(&config.TesseractConfig{Languages: "eng"}, runner)

	out, err := eng.Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "TOTAL 12.50", out.Text)
	assert.Greater(t, out.Confidence, 0.0)
	assert.Equal(t, "tesseract", runner.gotName)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "eng"}, runner.gotArgs)
}

func TestTesseractEngine_BinaryMissing(t *testing.T) {
	runner := &stubRunner{err: &exec.Error{Name: "tesseract", Err: exec.ErrNotFound}}
	eng := NewTesseractEngineWithRunner(&config.TesseractConfig{}, runner)

	_, err := eng.Recognize(context.Background(), []byte("img"))

	var unavail *UnavailableError
	assert.ErrorAs(t, err, &unavail)
	assert.Equal(t, "tesseract", unavail.Engine)
}

func TestTesseractEngine_RunFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1"), stderr: []byte("read_params_file: fail")}
	eng := NewTesseractEngineWithRunner(&config.TesseractConfig{}, runner)

	_, err := eng.Recognize(context.Background(), []byte("img"))
	require.Error(t, err)

	var unavail *UnavailableError
	assert.False(t, errors.As(err, &unavail))
	assert.Contains(t, err.Error(), "read_params_file")
}

func TestTesseractEngine_EmptyOutput(t *testing.T) {
	runner := &stubRunner{stdout: []byte("  \n")}
	eng := NewTesseractEngineWithRunner(&config.TesseractConfig{}, runner)

	out, err := eng.Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, out.Text)
	assert.Zero(t, out.Confidence)
}
