package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"ledgerd/internal/config"
	"ledgerd/internal/port"
)

// Runner lets tests stub the external command.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// TesseractEngine implements port.OCREngine by shelling out to the local
// tesseract binary. It reads the image from stdin and writes text to stdout.
type TesseractEngine struct {
	binary    string
	languages string
	timeout   time.Duration
	runner    Runner
}

// NewTesseractEngine creates a tesseract-backed engine from config.
func NewTesseractEngine(cfg *config.TesseractConfig) *TesseractEngine {
	binary := cfg.Binary
	if binary == "" {
		binary = "tesseract"
	}
	languages := cfg.Languages
	if languages == "" {
		languages = "eng"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &TesseractEngine{
		binary:    binary,
		languages: languages,
		timeout:   timeout,
		runner:    execRunner{},
	}
}

// NewTesseractEngineWithRunner creates an engine with a custom runner (for testing).
func NewTesseractEngineWithRunner(cfg *config.TesseractConfig, r Runner) *TesseractEngine {
	e := NewTesseractEngine(cfg)
	e.runner = r
	return e
}

func (t *TesseractEngine) Name() string { return "tesseract" }

func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) (*port.OCRText, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	stdout, stderr, err := t.runner.Run(ctx, image, t.binary, "stdin", "stdout", "-l", t.languages)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, NewUnavailableError("tesseract", err)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, NewUnavailableError("tesseract", err)
		}
		return nil, fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(stderr), 500))
	}

	text := strings.TrimSpace(string(stdout))
	out := &port.OCRText{Text: text}
	if text != "" {
		out.Confidence = heuristicConfidence(text)
	}
	return out, nil
}
