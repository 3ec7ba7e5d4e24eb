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

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"go.uber.org/zap"
)

// Client calls the classification facade
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a facade client. Deadlines come from the caller's context.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Classify sends one article to POST /v1/analyze/
func (c *Client) Classify(ctx context.Context, headline, article string) (*models.Verdict, error) {
	jsonData, err := json.Marshal(models.AnalyzeRequest{
		Headline: headline,
		Article:  article,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze/", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", models.ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.ErrTimeout
		}
		return nil, fmt.Errorf("%w: failed to read response: %v", models.ErrBackend, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	// Older facades answered 200 with {"error": ...}
	var errResp models.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", models.ErrBackend, errResp.Error)
	}

	return models.ParseVerdict(body)
}

func statusError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))

	var errResp models.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}

	if status == http.StatusGatewayTimeout {
		return fmt.Errorf("%w: %s", models.ErrTimeout, message)
	}
	return fmt.Errorf("%w: facade returned status %d: %s", models.ErrBackend, status, message)
}

// Ping checks that the facade is up
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach classification service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classification service ping failed with status %d", resp.StatusCode)
	}

	c.logger.Debug("Classification service is up", zap.String("url", c.baseURL))

	return nil
}
