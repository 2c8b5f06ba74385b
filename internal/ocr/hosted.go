package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ledgerd/internal/config"
	"ledgerd/internal/port"
)

// HostedEngine implements port.OCREngine against a hosted HTTP OCR service.
type HostedEngine struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewHostedEngine creates a hosted OCR client from config.
func NewHostedEngine(cfg *config.OCRProviderConfig) *HostedEngine {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HostedEngine{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (h *HostedEngine) Name() string { return "hosted" }

// hostedResponse models the OCR service response.
type hostedResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (h *HostedEngine) Recognize(ctx context.Context, image []byte) (*port.OCRText, error) {
	if h.endpoint == "" {
		return nil, NewUnavailableError("hosted", fmt.Errorf("no endpoint configured"))
	}

	reqBody := map[string]interface{}{
		"image": base64.StdEncoding.EncodeToString(image),
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// Connection-level failure: the service is unreachable, not
		// a recognition error on this image.
		return nil, NewUnavailableError("hosted", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, NewUnavailableError("hosted", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 500)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var out hostedResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	return &port.OCRText{Text: out.Text, Confidence: out.Confidence}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
