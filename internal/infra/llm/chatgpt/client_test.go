package chatgpt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jayesh25-trade/CineVibe/internal/infra/httpx"
	"github.com/Jayesh25-trade/CineVibe/pkg/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := httpx.DefaultConfig("openai", time.Second)
	cfg.Attempts = 1
	client, err := NewClient("sk-test", srv.URL, httpx.New(cfg, nil, logger.Discard()))
	require.NoError(t, err)
	return client
}

func TestCreateChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req ChatCompletionRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Equal(t, "gpt-4o-mini", req.Model)
		require.Equal(t, 600, req.MaxTokens)
		require.Len(t, req.Messages, 2)

		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"Heat\nRonin"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":50,"completion_tokens":10,"total_tokens":60}
		}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.8,
		MaxTokens:   600,
		Messages: []Message{
			{Role: "system", Content: "curator"},
			{Role: "user", Content: "moody"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Heat\nRonin", resp.Content())
	require.Equal(t, 60, resp.TokenUsage().TotalTokens)
}

func TestCreateChatCompletionErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient_quota")
}

func TestCreateChatCompletionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, httpx.StatusCode(err))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(" ", "", httpx.New(httpx.Config{}, nil, logger.Discard()))
	require.Error(t, err)
}
