package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/prompt"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	GroqBaseURL           = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel          = "gpt-4o-mini-2024-07-18"
	DefaultRequestTimeout = 30 * time.Second
)

// Client talks to any OpenAI-compatible chat completions API (OpenAI, Groq, OpenRouter).
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	provider   string
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config holds configuration for the client.
type Config struct {
	Provider   string // "openai", "groq" or "openrouter"; only used for metadata
	APIKey     string
	BaseURL    string
	ModelName  string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Headers    map[string]string // extra headers, e.g. OpenRouter's HTTP-Referer
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []tool        `json:"tools"`
	ToolChoice  toolChoice    `json:"tool_choice"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type toolChoice struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a new client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerName(cfg.Provider))
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRequestTimeout
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		provider:   providerName(cfg.Provider),
		headers:    cfg.Headers,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}

	logger.Info("Chat completions client initialized",
		zap.String("provider", client.provider),
		zap.String("model", cfg.ModelName),
		zap.String("base_url", cfg.BaseURL),
		zap.Int("max_retries", cfg.MaxRetries))

	return client, nil
}

func providerName(p string) string {
	if p == "" {
		return "openai"
	}
	return p
}

// Analyze asks the model for a verdict on one article.
func (c *Client) Analyze(ctx context.Context, headline, article string) (*models.Verdict, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		verdict, err := c.analyzeOnce(ctx, headline, article, attempt)
		if err == nil {
			return verdict, nil
		}

		lastErr = err
		if c.maxRetries > 1 {
			c.logger.Warn("Chat completions attempt failed",
				zap.String("provider", c.provider),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.maxRetries),
				zap.Error(err))
		}

		if ctx.Err() != nil {
			return nil, err
		}

		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", models.ErrTimeout, ctx.Err())
			}
		}
	}

	if c.maxRetries == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) analyzeOnce(ctx context.Context, headline, article string, attempt int) (*models.Verdict, error) {
	fn := functionSpec{
		Name:        prompt.FunctionName,
		Description: prompt.FunctionDescription,
		Parameters:  prompt.FunctionParameters(),
	}

	reqBody := chatRequest{
		Model: c.modelName,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: prompt.Build(headline, article)},
		},
		Tools:       []tool{{Type: "function", Function: fn}},
		ToolChoice:  toolChoice{Type: "function", Function: functionSpec{Name: prompt.FunctionName}},
		Temperature: 0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Chat completions request failed",
			zap.String("provider", c.provider),
			zap.Error(err),
			zap.Int("attempt", attempt))
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %v", models.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", models.ErrBackend, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Chat completions API error",
			zap.String("provider", c.provider),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
			zap.Int("attempt", attempt))
		return nil, fmt.Errorf("%w: %s API returned status %d: %s", models.ErrBackend, c.provider, resp.StatusCode, string(body))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", models.ErrMalformedResponse, err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("%w: %s API error: %s", models.ErrBackend, c.provider, apiResp.Error.Message)
	}

	verdict, err := extractVerdict(&apiResp)
	if err != nil {
		c.logger.Error("Failed to extract verdict",
			zap.String("provider", c.provider),
			zap.Error(err),
			zap.Int("attempt", attempt))
		return nil, err
	}

	c.logger.Debug("Chat completions call succeeded",
		zap.String("provider", c.provider),
		zap.Int("prediction", verdict.Prediction),
		zap.Int("total_tokens", apiResp.Usage.TotalTokens),
		zap.Int("attempt", attempt))

	return verdict, nil
}

// extractVerdict reads the forced tool call, falling back to JSON message content
// for providers that ignore tool_choice.
func extractVerdict(resp *chatResponse) (*models.Verdict, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", models.ErrMalformedResponse)
	}

	msg := resp.Choices[0].Message
	for _, call := range msg.ToolCalls {
		if call.Function.Name == prompt.FunctionName {
			return models.ParseVerdict([]byte(call.Function.Arguments))
		}
	}

	if msg.Content != "" {
		return models.ParseVerdict([]byte(msg.Content))
	}

	return nil, fmt.Errorf("%w: response has no %s tool call", models.ErrMalformedResponse, prompt.FunctionName)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetModelInfo returns information about the model being used.
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.provider,
		"model":       c.modelName,
		"base_url":    c.baseURL,
		"max_retries": c.maxRetries,
	}
}
