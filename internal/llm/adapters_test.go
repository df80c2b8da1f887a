package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/plate-audit/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "openai", config: Config{Provider: "openai", APIKey: "test-key"}},
		{name: "anthropic", config: Config{Provider: "Anthropic", APIKey: "test-key"}},
		{name: "gemini", config: Config{Provider: "gemini", APIKey: "test-key"}},
		{name: "google alias", config: Config{Provider: "google", APIKey: "test-key"}},
		{name: "missing API key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "unknown provider", config: Config{Provider: "claudecode", APIKey: "test-key"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestOpenAIClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.InDelta(t, 0.1, body["temperature"], 0.0001)
		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		assert.Equal(t, "system prompt", messages[0].(map[string]any)["content"])
		assert.Equal(t, "user prompt", messages[1].(map[string]any)["content"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"conflicts":[]}`}},
			},
		})
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	reply, err := client.Analyze(context.Background(), "user prompt", "system prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"conflicts":[]}`, reply)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
		status  int
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantErr: "status 401"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no completion choices"},
		{name: "bad json", status: http.StatusOK, body: `nope`, wantErr: "failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Analyze(context.Background(), "user", "system")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnthropicClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "system prompt", body["system"])
		assert.Equal(t, "claude-test", body["model"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": `{"conflicts":[]}`}},
		})
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", Model: "claude-test", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Analyze(context.Background(), "user prompt", "system prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"conflicts":[]}`, reply)
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "user", "system")
	assert.ErrorContains(t, err, "no content")
}

func TestGeminiClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, "system prompt", body.SystemInstruction.Parts[0].Text)
		require.Len(t, body.Contents, 1)
		assert.Equal(t, "user prompt", body.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"conflicts\":"},{"text":"[]}"}]}}]}`))
	}))
	defer server.Close()

	client, err := newGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Analyze(context.Background(), "user prompt", "system prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"conflicts":[]}`, reply)
}

func TestAdapters_RejectionIsUpstreamError(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		path     string
	}{
		{name: "openai", provider: "openai", path: "/chat/completions"},
		{name: "anthropic", provider: "anthropic", path: "/messages"},
		{name: "gemini", provider: "gemini", path: "/models/gemini-2.0-flash:generateContent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("overloaded"))
			}))
			defer server.Close()

			client, err := NewClient(Config{Provider: tt.provider, APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Analyze(context.Background(), "user", "system")

			var upstreamErr *common.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, server.URL+tt.path, upstreamErr.Endpoint)
			assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.StatusCode)
			assert.Equal(t, "overloaded", upstreamErr.Body)
		})
	}
}

func TestAdapters_NetworkFailureIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(Config{Provider: "openai", APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "user", "system")

	var upstreamErr *common.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 0, upstreamErr.StatusCode)
	assert.Equal(t, baseURL+"/chat/completions", upstreamErr.Endpoint)
	assert.Error(t, upstreamErr.Err)
}
