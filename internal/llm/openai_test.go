package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"alcyxob/coach-assistant/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Millisecond,
	}
}

func completionJSON(content, model string, tokens int) string {
	payload := map[string]any{
		"model": model,
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]any{"total_tokens": tokens},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newTestClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(config.OpenAIConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "default-model",
	}, WithRetryConfig(fastRetry()))
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("¡Hola! Vamos a ello.", "default-model", 42)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "¡Hola! Vamos a ello.", resp.Content)
	assert.Equal(t, "default-model", resp.Model)
	assert.Equal(t, 42, resp.TotalTokens)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "default-model", gotBody.Model)
}

func TestCompleteModelOverride(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatCompletionRequest
		json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Write([]byte(completionJSON("ok", body.Model, 1)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Model:    "expensive-model",
		Messages: []Message{{Role: "user", Content: "plan"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "expensive-model", gotModel)
}

func TestCompleteRetriesOn500ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionJSON("recuperado", "m", 5)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recuperado", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionJSON("ok", "m", 1)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompleteDoesNotRetryOn400(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "400")
}

func TestCompleteExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "still broken", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteSurfacesAPIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"context length exceeded","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context length exceeded")
}

func TestCompleteEmptyChoicesIsRetryable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"model":"m","choices":[]}`))
			return
		}
		w.Write([]byte(completionJSON("ya está", "m", 1)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ya está", resp.Content)
}

func TestCompleteHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"},
		WithRetryConfig(RetryConfig{MaxAttempts: 5, BackoffBase: time.Hour, BackoffMultiplier: 1, MaxBackoff: time.Hour}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Complete(ctx, Request{Messages: []Message{{Role: "user", Content: "hola"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
