package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/gemini"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/openai"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderGroq       ProviderType = "groq"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGemini     ProviderType = "gemini"
)

// ProviderConfig holds configuration for a single provider instance
type ProviderConfig struct {
	Type       ProviderType  `yaml:"type"`
	APIKey     string        `yaml:"api_key"`
	ModelName  string        `yaml:"model_name"`
	BaseURL    string        `yaml:"base_url"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"`

	// Rate limiting per provider, 0 disables it
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Provider is any backend able to return a verdict for one article
type Provider interface {
	Analyze(ctx context.Context, headline, article string) (*models.Verdict, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

// NewProvider builds the client for one provider config
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenAI, "":
		return openai.NewClient(openai.Config{
			Provider:   string(ProviderOpenAI),
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			ModelName:  cfg.ModelName,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		}, logger)
	case ProviderGroq:
		return openai.NewClient(openai.Config{
			Provider:   string(ProviderGroq),
			APIKey:     cfg.APIKey,
			BaseURL:    orDefault(cfg.BaseURL, openai.GroqBaseURL),
			ModelName:  orDefault(cfg.ModelName, "llama-3.3-70b-versatile"),
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		}, logger)
	case ProviderOpenRouter:
		return openai.NewClient(openai.Config{
			Provider:   string(ProviderOpenRouter),
			APIKey:     cfg.APIKey,
			BaseURL:    orDefault(cfg.BaseURL, openai.OpenRouterBaseURL),
			ModelName:  orDefault(cfg.ModelName, "openai/gpt-4o-mini"),
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
			Headers: map[string]string{
				"HTTP-Referer": "https://github.com/gcastro-vish/llm-fake-news-detector",
				"X-Title":      "LLM Fake News Detector",
			},
		}, logger)
	case ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:     cfg.APIKey,
			ModelName:  cfg.ModelName,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// RateLimitedProvider wraps a provider with a requests-per-minute limit
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRateLimitedProvider wraps a provider with rate limiting.
// requestsPerMinute <= 0 means no limit.
func NewRateLimitedProvider(provider Provider, requestsPerMinute int, logger *zap.Logger) *RateLimitedProvider {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}

	return &RateLimitedProvider{
		provider: provider,
		limiter:  limiter,
		logger:   logger,
	}
}

func (p *RateLimitedProvider) Analyze(ctx context.Context, headline, article string) (*models.Verdict, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait cancelled: %v", models.ErrTimeout, err)
	}

	return p.provider.Analyze(ctx, headline, article)
}

func (p *RateLimitedProvider) Close() error {
	return p.provider.Close()
}

func (p *RateLimitedProvider) GetModelInfo() map[string]interface{} {
	info := p.provider.GetModelInfo()
	info["requests_per_minute"] = p.limiter.Burst()
	return info
}

// MultiProviderClient manages multiple LLM providers with fallback
type MultiProviderClient struct {
	providers    []Provider
	currentIndex int
	mu           sync.RWMutex
	logger       *zap.Logger
	failureCount map[int]int
	maxFailures  int
}

// MultiProviderConfig holds configuration for multiple providers
type MultiProviderConfig struct {
	Providers   []ProviderConfig
	MaxFailures int // consecutive failures before switching provider
}

// NewMultiProviderClient creates a client over every provider that could be initialized
func NewMultiProviderClient(cfg MultiProviderConfig, logger *zap.Logger) (*MultiProviderClient, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	providers := make([]Provider, 0, len(cfg.Providers))

	for i, providerCfg := range cfg.Providers {
		provider, err := NewProvider(providerCfg, logger)
		if err != nil {
			logger.Error("Failed to create provider",
				zap.String("type", string(providerCfg.Type)),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		if providerCfg.RequestsPerMinute > 0 {
			provider = NewRateLimitedProvider(provider, providerCfg.RequestsPerMinute, logger)
		}

		providers = append(providers, provider)

		logger.Info("Provider initialized",
			zap.String("type", string(providerCfg.Type)),
			zap.String("model", providerCfg.ModelName),
			zap.Int("rate_limit", providerCfg.RequestsPerMinute),
			zap.Int("index", i))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers could be initialized")
	}

	return NewMultiProvider(providers, cfg.MaxFailures, logger), nil
}

// NewMultiProvider builds the fallback chain from already constructed providers
func NewMultiProvider(providers []Provider, maxFailures int, logger *zap.Logger) *MultiProviderClient {
	if maxFailures <= 0 {
		maxFailures = 3
	}

	return &MultiProviderClient{
		providers:    providers,
		logger:       logger,
		failureCount: make(map[int]int),
		maxFailures:  maxFailures,
	}
}

func (c *MultiProviderClient) getCurrentProvider() (Provider, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[c.currentIndex], c.currentIndex
}

// switchFrom advances past the failed provider unless another goroutine already did
func (c *MultiProviderClient) switchFrom(failedIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentIndex != failedIndex {
		return
	}

	c.currentIndex = (c.currentIndex + 1) % len(c.providers)
	c.failureCount[failedIndex] = 0

	c.logger.Info("Switching provider",
		zap.Int("from_index", failedIndex),
		zap.Int("to_index", c.currentIndex),
		zap.Int("total_providers", len(c.providers)))
}

// recordFailure reports whether the provider reached its failure budget
func (c *MultiProviderClient) recordFailure(providerIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount[providerIndex]++

	if c.failureCount[providerIndex] >= c.maxFailures {
		c.logger.Warn("Provider reached max failures",
			zap.Int("provider_index", providerIndex),
			zap.Int("failures", c.failureCount[providerIndex]))
		return true
	}

	return false
}

func (c *MultiProviderClient) resetFailureCount(providerIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount[providerIndex] = 0
}

// Analyze starts at the current provider and walks the chain until one answers.
// The current provider only changes once it exhausts its failure budget or
// reports a rate limit.
func (c *MultiProviderClient) Analyze(ctx context.Context, headline, article string) (*models.Verdict, error) {
	_, start := c.getCurrentProvider()

	var lastErr error
	for offset := 0; offset < len(c.providers); offset++ {
		index := (start + offset) % len(c.providers)

		verdict, err := c.providers[index].Analyze(ctx, headline, article)
		if err == nil {
			c.resetFailureCount(index)
			return verdict, nil
		}
		lastErr = err

		c.logger.Error("Provider failed",
			zap.Int("provider_index", index),
			zap.Error(err))

		if ctx.Err() != nil || errors.Is(err, models.ErrInvalidInput) {
			return nil, err
		}

		if c.recordFailure(index) || isRateLimitError(err) {
			c.switchFrom(index)
		}
	}

	if len(c.providers) == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// isRateLimitError checks if error is a rate limit error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "rate limit")
}

// Close closes all providers
func (c *MultiProviderClient) Close() error {
	var lastErr error
	for i, provider := range c.providers {
		if err := provider.Close(); err != nil {
			c.logger.Error("Failed to close provider",
				zap.Int("index", i),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// GetModelInfo returns information about the current provider
func (c *MultiProviderClient) GetModelInfo() map[string]interface{} {
	provider, index := c.getCurrentProvider()
	info := provider.GetModelInfo()

	c.mu.RLock()
	defer c.mu.RUnlock()
	info["provider_index"] = index
	info["total_providers"] = len(c.providers)
	info["failure_count"] = c.failureCount[index]
	return info
}

// GetProvidersInfo returns information about all providers
func (c *MultiProviderClient) GetProvidersInfo() []map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := make([]map[string]interface{}, len(c.providers))
	for i, provider := range c.providers {
		providerInfo := provider.GetModelInfo()
		providerInfo["is_current"] = i == c.currentIndex
		providerInfo["failure_count"] = c.failureCount[i]
		info[i] = providerInfo
	}
	return info
}
