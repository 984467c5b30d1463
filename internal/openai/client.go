// Package openai wraps the chat-completion and embeddings provider behind
// the small surface the assistant needs: JSON-mode chat and query embeddings.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/attica-health/carebot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	DefaultTimeout        = 20 * time.Second
	DefaultTemperature    = float32(0.3)

	defaultMaxCompletionTokens = 650
)

// API is the provider surface the client depends on, extracted for testing.
type API interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
	Temperature    float32
}

// Client is the generation provider used by the assistant. A nil *Client is
// a valid "not configured" provider: every call fails with
// domain.ErrProviderNotConfigured.
type Client struct {
	api         API
	model       string
	embedding   string
	timeout     time.Duration
	temperature float32
}

// NewClient creates a provider client, or nil when no API key is configured.
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	c := &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		embedding:   cfg.EmbeddingModel,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}
	if c.model == "" {
		c.model = DefaultChatModel
	}
	if c.embedding == "" {
		c.embedding = DefaultEmbeddingModel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	return c
}

// NewClientWithAPI creates a client over a custom API implementation (tests).
func NewClientWithAPI(api API) *Client {
	return &Client{
		api:         api,
		model:       DefaultChatModel,
		embedding:   DefaultEmbeddingModel,
		timeout:     DefaultTimeout,
		temperature: DefaultTemperature,
	}
}

// Configured reports whether the provider can be called.
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// ChatJSON runs a chat completion in JSON mode and returns the raw JSON text
// of the assistant message. Schema adherence is validated by the caller.
func (c *Client) ChatJSON(ctx context.Context, messages []domain.ChatMessage) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   defaultMaxCompletionTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: reqMessages,
	})
	if err != nil {
		return nil, mapProviderError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, domain.NewProviderUpstreamError(0, errors.New("response missing message content"))
	}

	content := resp.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		// JSON mode should prevent this, but keep a guard.
		return nil, domain.NewProviderUpstreamError(0, errors.New("message content is not valid JSON"))
	}

	return json.RawMessage(content), nil
}

// Embeddings returns one float vector per input text.
func (c *Client) Embeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	clean := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.TrimSpace(t); s != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return nil, domain.ErrEmbeddingsInputEmpty
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          clean,
		Model:          openai.EmbeddingModel(c.embedding),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, mapProviderError(err)
	}

	if len(resp.Data) != len(clean) {
		return nil, domain.NewProviderUpstreamError(0, errors.New("embeddings response missing vectors"))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func mapProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrProviderTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderUpstreamError(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewProviderUpstreamError(reqErr.HTTPStatusCode, err)
	}

	return domain.NewProviderUpstreamError(0, err)
}
