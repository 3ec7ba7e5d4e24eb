package handler

import (
	"context"
	"net/http"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Analyzer is the classification service behind the HTTP API
type Analyzer interface {
	Analyze(ctx context.Context, headline, article string) (*models.Verdict, error)
	GetModelInfo() map[string]interface{}
}

// Handler handles HTTP requests
type Handler struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(analyzer Analyzer, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes. Extra middleware, such as the bearer
// check, applies to the /v1 group only.
func (h *Handler) RegisterRoutes(r *gin.Engine, v1Middleware ...gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.HealthCheck)

	v1 := r.Group("/v1", v1Middleware...)
	{
		v1.POST("/analyze/", h.Analyze)
	}
}

// Root is the liveness check used by the evaluation driver
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Message": "Server is up and running!"})
}

// Analyze handles single article classification
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid analyze request",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	verdict, err := h.analyzer.Analyze(c.Request.Context(), req.Headline, req.Article)
	if err != nil {
		h.logger.Error("Failed to analyze article",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		HandleAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	model := "unknown"
	if m, ok := h.analyzer.GetModelInfo()["model"].(string); ok {
		model = m
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fake-news-detector",
		"model":   model,
	})
}
