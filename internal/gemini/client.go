package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/prompt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// Client wraps the Gemini API client
type Client struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	logger     *zap.Logger
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// Config for Gemini client
type Config struct {
	APIKey     string
	ModelName  string
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
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

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	configureModel(model)

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		client:     client,
		model:      model,
		logger:     logger,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// configureModel sets the system instruction, the analyze_news declaration and
// forces the model to answer through it.
func configureModel(model *genai.GenerativeModel) {
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
	}

	model.SetTemperature(0)

	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{functionDeclaration()},
	}}

	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{prompt.FunctionName},
		},
	}
}

func functionDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        prompt.FunctionName,
		Description: prompt.FunctionDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				prompt.PredictionField: {
					Type:        genai.TypeInteger,
					Description: prompt.PredictionDescription,
				},
				prompt.JustificationField: {
					Type:        genai.TypeString,
					Description: prompt.JustificationDescription,
				},
			},
			Required: []string{prompt.PredictionField, prompt.JustificationField},
		},
	}
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// Analyze classifies a single article
func (c *Client) Analyze(ctx context.Context, headline, article string) (*models.Verdict, error) {
	userPrompt := prompt.Build(headline, article)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", models.ErrTimeout, ctx.Err())
			}
		}

		resp, err := c.model.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", models.ErrTimeout, err)
			}
			lastErr = fmt.Errorf("%w: gemini API error: %v", models.ErrBackend, err)
			continue
		}

		verdict, err := extractVerdict(resp)
		if err != nil {
			c.logger.Error("Failed to extract verdict from Gemini response",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}

		c.logger.Debug("Gemini call succeeded",
			zap.Int("prediction", verdict.Prediction),
			zap.Int("attempt", attempt+1))

		return verdict, nil
	}

	if c.maxRetries == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// extractVerdict finds the analyze_news call in the first candidate. Text parts
// are accepted as a fallback when they carry the same JSON object.
func extractVerdict(resp *genai.GenerateContentResponse) (*models.Verdict, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil {
			return nil, fmt.Errorf("%w: prompt blocked: %s", models.ErrMalformedResponse, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: empty response from gemini", models.ErrMalformedResponse)
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil, fmt.Errorf("%w: candidate has no parts", models.ErrMalformedResponse)
	}

	for _, part := range content.Parts {
		if call, ok := part.(genai.FunctionCall); ok && call.Name == prompt.FunctionName {
			return models.VerdictFromMap(call.Args)
		}
	}

	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			return models.ParseVerdict([]byte(text))
		}
	}

	return nil, fmt.Errorf("%w: response has no %s call", models.ErrMalformedResponse, prompt.FunctionName)
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "gemini",
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
