package handler

import (
	"errors"
	"net/http"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"github.com/gin-gonic/gin"
)

// MapAnalysisError maps service errors to an HTTP status and a client-facing message.
func MapAnalysisError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrTimeout):
		return http.StatusGatewayTimeout, models.ErrTimeout.Error()
	case errors.Is(err, models.ErrMalformedResponse):
		return http.StatusBadGateway, "model returned a malformed verdict"
	case errors.Is(err, models.ErrBackend):
		return http.StatusBadGateway, "model backend unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleAnalysisError writes the mapped error payload.
func HandleAnalysisError(c *gin.Context, err error) {
	status, message := MapAnalysisError(err)
	c.JSON(status, models.ErrorResponse{Error: message})
}
