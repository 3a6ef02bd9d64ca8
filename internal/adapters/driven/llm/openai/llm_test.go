package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_Defaults(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err, "API key is required")

	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultLLMTimeout, svc.client.Timeout)
}

func TestLLMService_Chat(t *testing.T) {
	var got chatCompletionRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"paragraph\":\"ok\"}"}}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{MaxTokens: 100, Temperature: 0.4, JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"paragraph":"ok"}`, out)
	assert.Equal(t, DefaultLLMModel, got.Model)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, 100, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestLLMService_Generate_NoJSONMode(t *testing.T) {
	var raw map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"text"}}]}`))
	})

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{StopWords: []string{"\n"}})

	require.NoError(t, err)
	assert.Equal(t, "text", out)
	assert.NotContains(t, raw, "response_format")
	assert.Equal(t, []any{"\n"}, raw["stop"])
}

func TestLLMService_Chat_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantUpstream bool
	}{
		{"server error", http.StatusBadGateway, `oops`, true},
		{"rate limited", http.StatusTooManyRequests, `{}`, true},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad"}}`, false},
		{"api error body", http.StatusOK, `{"error":{"message":"quota"}}`, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, false},
		{"not json", http.StatusOK, `<html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})

			require.Error(t, err)
			assert.Equal(t, tt.wantUpstream, errors.Is(err, domain.ErrUpstreamUnavailable))
		})
	}
}

func TestLLMService_Chat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestLLMService_Ping(t *testing.T) {
	ok := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, ok.Ping(context.Background()))

	denied := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	})
	assert.ErrorContains(t, denied.Ping(context.Background()), "401")
	assert.NoError(t, denied.Close())
}
