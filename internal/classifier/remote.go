package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

const classifyPath = "/classify"

// Remote calls an external ML service for sentiment classification.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewRemote creates a classifier backed by an HTTP ML service.
func NewRemote(baseURL string, timeout time.Duration, log logger.Logger) *Remote {
	return &Remote{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends the text to the ML service. Empty or whitespace-only text
// is neutral with score zero and never reaches the service. Any transport,
// status, or payload failure maps to domain.ErrClassification.
func (r *Remote) Classify(ctx context.Context, text string) (domain.Label, float64, error) {
	if strings.TrimSpace(text) == "" {
		return domain.LabelNeutral, 0, nil
	}

	payload, marshalErr := json.Marshal(classifyRequest{Text: text})
	if marshalErr != nil {
		return "", 0, fmt.Errorf("%w: marshal request: %w", domain.ErrClassification, marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+classifyPath, bytes.NewReader(payload))
	if reqErr != nil {
		return "", 0, fmt.Errorf("%w: build request: %w", domain.ErrClassification, reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := r.client.Do(req)
	if doErr != nil {
		return "", 0, fmt.Errorf("%w: call ml service: %w", domain.ErrClassification, doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", 0, fmt.Errorf("%w: ml service status %d: %s",
			domain.ErrClassification, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed classifyResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return "", 0, fmt.Errorf("%w: decode response: %w", domain.ErrClassification, decodeErr)
	}

	label := domain.Label(parsed.Label)
	if !label.IsValid() {
		return "", 0, fmt.Errorf("%w: ml service returned unknown label %q",
			domain.ErrClassification, parsed.Label)
	}

	return label, clamp(parsed.Score), nil
}
