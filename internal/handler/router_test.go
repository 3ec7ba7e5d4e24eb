package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestNewRouter(t *testing.T) {
	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", mock.Anything, "h", "a").Return(&models.Verdict{Prediction: 0, Justification: "fine"}, nil)

	router := NewRouter(analyzer, "secret", zap.NewNop())

	send := func(auth string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/v1/analyze/", bytes.NewBufferString(`{"headline": "h", "article": "a"}`))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("rejects missing token", func(t *testing.T) {
		w := send("")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("accepts bearer token", func(t *testing.T) {
		w := send("Bearer secret")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"PREDICTION": 0, "JUSTIFICATION": "fine"}`, w.Body.String())
	})

	t.Run("liveness is public", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
