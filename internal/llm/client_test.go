package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points a Client at handler and returns it with the server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:        srv.URL + "/",
		APIKey:         "sk-test",
		ChatModel:      "chat-model",
		VisionModel:    "vision-model",
		EmbeddingModel: "embed-model",
		Dimensions:     3,
	}, discardLogger())
}

func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChat(w, "hello there")
	})

	out, err := c.Generate(context.Background(), "be brief", "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	assert.Equal(t, "chat-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "say hi", got.Messages[1].Content)
	assert.Nil(t, got.ResponseFormat)
}

func TestGenerate_NoSystemPrompt(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChat(w, "ok")
	})

	_, err := c.Generate(context.Background(), "", "prompt")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestGenerate_ProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})

	_, err := c.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestGenerate_NoRetry(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGenerate_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Generate(context.Background(), "", "x")
	assert.Error(t, err)
}

func TestEmbed(t *testing.T) {
	var got embeddingRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	})

	vec, err := c.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "embed-model", got.Model)
	assert.Equal(t, "some text", got.Input)
	assert.Equal(t, 3, got.Dimensions)
}

func TestEmbed_EmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestDescribeImage(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeChat(w, `{"title":"Cat","summary":"A cat."}`)
	})

	schema := json.RawMessage(`{"type":"object"}`)
	out, err := c.DescribeImage(context.Background(), "describe", []byte{0xff, 0xd8}, "image/png", schema)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Cat","summary":"A cat."}`, out)

	assert.Equal(t, "vision-model", raw["model"])

	format := raw["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])

	msgs := raw["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)
}

func TestDescribeImage_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called for an empty image")
	})

	_, err := c.DescribeImage(context.Background(), "describe", nil, "image/png", nil)
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{ChatModel: "m"}, discardLogger())

	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, "m", c.cfg.VisionModel)
	assert.Equal(t, DefaultDimensions, c.Dimensions())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeChat(w, "late")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "", "x")
	assert.Error(t, err)
}
