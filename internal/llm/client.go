// Package llm is a small client for OpenAI-compatible inference APIs.
//
// It speaks exactly two endpoints:
//
//	POST {base}/chat/completions   text generation and vision
//	POST {base}/embeddings         vector embeddings
//
// Every call goes through a shared rate limiter and a single http.Client
// whose Timeout is the hard ceiling for one provider call. There are no
// retries: a failed call is reported to the caller as-is.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultTimeout    = 300 * time.Second
	DefaultDimensions = 1536

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 8 << 20
)

// Config holds the provider settings. Zero values fall back to defaults.
type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	VisionModel    string
	EmbeddingModel string
	Dimensions     int
	Timeout        time.Duration
	RatePerSecond  float64
	RateBurst      int
}

// Client implements the text, embedding and vision provider interfaces
// used by the enrichment layer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client. A non-positive RatePerSecond disables limiting.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.ChatModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// Dimensions reports the embedding width requested from the provider.
func (c *Client) Dimensions() int { return c.cfg.Dimensions }

// ---- wire types ----

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or []contentPart for vision
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ---- operations ----

// Generate runs a single chat completion and returns the assistant's text.
// An empty system prompt is omitted.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: prompt})

	return c.chat(ctx, chatRequest{Model: c.cfg.ChatModel, Messages: msgs})
}

// DescribeImage sends the image inline as a data URI. When schema is
// non-empty the provider is asked for a JSON object matching it; the raw
// content is returned either way, decoding is up to the caller.
func (c *Client) DescribeImage(ctx context.Context, prompt string, image []byte, mime string, schema json.RawMessage) (string, error) {
	if len(image) == 0 {
		return "", errors.New("llm: empty image")
	}
	if mime == "" {
		mime = "image/jpeg"
	}

	dataURI := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
	req := chatRequest{
		Model: c.cfg.VisionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			},
		}},
	}
	if len(schema) > 0 {
		req.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: "image_analysis", Schema: schema, Strict: true},
		}
	}

	return c.chat(ctx, req)
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	err := c.post(ctx, "/embeddings", embeddingRequest{
		Model:      c.cfg.EmbeddingModel,
		Input:      text,
		Dimensions: c.cfg.Dimensions,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("llm: no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) chat(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// post marshals body, waits for the limiter, and decodes a 200 response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("llm: marshaling request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("llm: reading %s response: %w", path, err)
	}

	c.logger.Debug("provider call",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("llm: %s returned %d: %s", path, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("llm: %s returned %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("llm: decoding %s response: %w", path, err)
	}
	return nil
}
