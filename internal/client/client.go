package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emojilens/backend/internal/models"
)

const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultTimeout    = 60 * time.Second
)

// ErrBlankText is returned before any request is made for empty input.
var ErrBlankText = errors.New("please enter some text to analyze")

// BackendError is a non-2xx reply from the analysis backend.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("Backend error (%d): %s", e.Status, e.Detail)
}

// Client talks to the analysis backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBackendURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Text   string  `json:"text"`
	APIKey *string `json:"api_key"`
}

// Analyze posts text to /api/analyze. A blank apiKey is sent as null so the
// backend falls back to its own key.
func (c *Client) Analyze(ctx context.Context, text, apiKey string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankText
	}

	payload := analyzeRequest{Text: text}
	if key := strings.TrimSpace(apiKey); key != "" {
		payload.APIKey = &key
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.AnalysisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health calls /health and returns its status field.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", err
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := c.do(req, &health); err != nil {
		return "", err
	}
	return health.Status, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach backend at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{Status: resp.StatusCode, Detail: detailOf(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// detailOf extracts {"detail": ...} from an error body, or returns the raw
// text when the body has no such field.
func detailOf(raw []byte) string {
	var body struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != nil {
		if s, ok := body.Detail.(string); ok {
			return s
		}
		encoded, _ := json.Marshal(body.Detail)
		return string(encoded)
	}
	return strings.TrimSpace(string(raw))
}
