package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func toolCallResponse(arguments string) map[string]interface{} {
	return map[string]interface{}{
		"id": "chatcmpl-1",
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role": "assistant",
					"tool_calls": []map[string]interface{}{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]interface{}{
								"name":      prompt.FunctionName,
								"arguments": arguments,
							},
						},
					},
				},
				"finish_reason": "stop",
			},
		},
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:  "sk-test",
		BaseURL: url,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestClient_Analyze(t *testing.T) {
	t.Run("forces the analyze_news tool call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, DefaultModel, req.Model)
			assert.Equal(t, float64(0), req.Temperature)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, prompt.SystemInstruction, req.Messages[0].Content)
			assert.Equal(t, prompt.Build("Headline", "Article"), req.Messages[1].Content)
			require.Len(t, req.Tools, 1)
			assert.Equal(t, prompt.FunctionName, req.Tools[0].Function.Name)
			assert.Equal(t, prompt.FunctionName, req.ToolChoice.Function.Name)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toolCallResponse(`{"PREDICTION": 1, "JUSTIFICATION": "clickbait"}`))
		}))
		defer server.Close()

		verdict, err := newTestClient(t, server.URL).Analyze(context.Background(), "Headline", "Article")

		require.NoError(t, err)
		assert.Equal(t, 1, verdict.Prediction)
		assert.Equal(t, "clickbait", verdict.Justification)
	})

	t.Run("falls back to message content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]interface{}{
						"role":    "assistant",
						"content": "```json\n{\"PREDICTION\": 0, \"JUSTIFICATION\": \"neutral\"}\n```",
					}},
				},
			})
		}))
		defer server.Close()

		verdict, err := newTestClient(t, server.URL).Analyze(context.Background(), "h", "a")

		require.NoError(t, err)
		assert.Equal(t, 0, verdict.Prediction)
	})

	t.Run("server error is a backend error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("rate limit"))
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL).Analyze(context.Background(), "h", "a")

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrBackend)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("missing tool call is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]interface{}{"role": "assistant"}},
				},
			})
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL).Analyze(context.Background(), "h", "a")

		assert.ErrorIs(t, err, models.ErrMalformedResponse)
	})

	t.Run("invalid arguments are malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(toolCallResponse(`{"PREDICTION": 5}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL).Analyze(context.Background(), "h", "a")

		assert.ErrorIs(t, err, models.ErrMalformedResponse)
	})

	t.Run("deadline is a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newTestClient(t, server.URL).Analyze(ctx, "h", "a")

		assert.ErrorIs(t, err, models.ErrTimeout)
	})

	t.Run("retries until success", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_ = json.NewEncoder(w).Encode(toolCallResponse(`{"PREDICTION": 0, "JUSTIFICATION": "ok"}`))
		}))
		defer server.Close()

		client, err := NewClient(Config{
			APIKey:     "sk-test",
			BaseURL:    server.URL,
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		verdict, err := client.Analyze(context.Background(), "h", "a")

		require.NoError(t, err)
		assert.Equal(t, 0, verdict.Prediction)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}

func TestNewClient(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewClient(Config{Provider: "groq"}, zap.NewNop())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "groq")
	})

	t.Run("applies defaults", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"}, zap.NewNop())
		require.NoError(t, err)

		info := client.GetModelInfo()
		assert.Equal(t, "openai", info["provider"])
		assert.Equal(t, DefaultModel, info["model"])
		assert.Equal(t, DefaultBaseURL, info["base_url"])
		assert.Equal(t, 1, info["max_retries"])
	})
}
