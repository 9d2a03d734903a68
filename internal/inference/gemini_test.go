package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/test-model:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		assert.NoError(t, json.Unmarshal(raw, &req))
		assert.Contains(t, string(raw), `"mimeType":"image/png"`)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, baseURL string, timeout time.Duration) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: timeout,
		BaseURL: baseURL,
	})
	require.NoError(t, err)
	return g
}

func TestGemini_GeneratePrompt(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "  a cat sitting on a red sofa  "}]}}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 7, "totalTokenCount": 17}
	}`)

	text, err := newTestGemini(t, srv.URL, time.Second).GeneratePromptFromImage(context.Background(), []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "a cat sitting on a red sofa", text)
}

func TestGemini_EmptyResponse(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "   "}]}}]}`)

	_, err := newTestGemini(t, srv.URL, time.Second).GeneratePromptFromImage(context.Background(), []byte("png-bytes"), "image/png")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGemini_APIError(t *testing.T) {
	srv := geminiServer(t, http.StatusInternalServerError, `{"error": {"code": 500, "message": "boom", "status": "INTERNAL"}}`)

	_, err := newTestGemini(t, srv.URL, time.Second).GeneratePromptFromImage(context.Background(), []byte("png-bytes"), "image/png")
	assert.Error(t, err)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{Model: "m"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.GeneratePromptFromImage(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
