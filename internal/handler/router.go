package handler

import (
	"github.com/gcastro-vish/llm-fake-news-detector/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates the gin engine with middleware and routes
func NewRouter(analyzer Analyzer, authToken string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	NewHandler(analyzer, logger).RegisterRoutes(router, middleware.Auth(authToken, logger))

	return router
}
