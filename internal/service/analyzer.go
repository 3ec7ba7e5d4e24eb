package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"go.uber.org/zap"
)

// LLMClient interface for any LLM provider
type LLMClient interface {
	Analyze(ctx context.Context, headline, article string) (*models.Verdict, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

// Analyzer handles classification business logic
type Analyzer struct {
	llmClient LLMClient
	logger    *zap.Logger
}

// NewAnalyzer creates a new analyzer service
func NewAnalyzer(llmClient LLMClient, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		llmClient: llmClient,
		logger:    logger,
	}
}

// Analyze classifies one article as fake or genuine
func (a *Analyzer) Analyze(ctx context.Context, headline, article string) (*models.Verdict, error) {
	if strings.TrimSpace(headline) == "" {
		return nil, fmt.Errorf("%w: headline is empty", models.ErrInvalidInput)
	}
	if strings.TrimSpace(article) == "" {
		return nil, fmt.Errorf("%w: article is empty", models.ErrInvalidInput)
	}

	start := time.Now()

	verdict, err := a.llmClient.Analyze(ctx, headline, article)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, models.ErrTimeout) {
			err = fmt.Errorf("%w: %v", models.ErrTimeout, err)
		}
		return nil, fmt.Errorf("llm analysis failed: %w", err)
	}

	a.logger.Info("Article analyzed",
		zap.Int("prediction", verdict.Prediction),
		zap.String("justification", verdict.Justification),
		zap.String("provider", a.modelField("provider")),
		zap.String("model", a.modelField("model")),
		zap.Duration("duration", time.Since(start)))

	return verdict, nil
}

// GetModelInfo returns info about the provider currently in use
func (a *Analyzer) GetModelInfo() map[string]interface{} {
	return a.llmClient.GetModelInfo()
}

func (a *Analyzer) modelField(key string) string {
	if v, ok := a.llmClient.GetModelInfo()[key].(string); ok {
		return v
	}
	return "unknown"
}
