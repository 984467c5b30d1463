package openai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/attica-health/carebot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	chatResp  openai.ChatCompletionResponse
	chatErr   error
	embedResp openai.EmbeddingResponse
	embedErr  error

	lastChatReq  openai.ChatCompletionRequest
	lastEmbedReq openai.EmbeddingRequest
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastChatReq = req
	return f.chatResp, f.chatErr
}

func (f *fakeAPI) CreateEmbeddings(_ context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	if r, ok := req.(openai.EmbeddingRequest); ok {
		f.lastEmbedReq = r
	}
	return f.embedResp, f.embedErr
}

func chatResponseWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestNewClientWithoutKeyIsNil(t *testing.T) {
	assert.Nil(t, NewClient(Config{}))

	var c *Client
	assert.False(t, c.Configured())
}

func TestNilClientFailsWithNotConfigured(t *testing.T) {
	var c *Client

	_, err := c.ChatJSON(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	_, err = c.Embeddings(context.Background(), []string{"hi"})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestChatJSON(t *testing.T) {
	api := &fakeAPI{chatResp: chatResponseWith(`{"reply":"ok"}`)}
	c := NewClientWithAPI(api)

	raw, err := c.ChatJSON(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "system prompt"},
		{Role: domain.RoleUser, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"reply":"ok"}`), raw)

	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.lastChatReq.ResponseFormat.Type)
	require.Len(t, api.lastChatReq.Messages, 2)
	assert.Equal(t, "system", api.lastChatReq.Messages[0].Role)
}

func TestChatJSONInvalidContent(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{chatResp: chatResponseWith("not json at all")})

	_, err := c.ChatJSON(context.Background(), nil)
	require.Error(t, err)
	domainErr, ok := err.(*domain.DomainError)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeProviderError, domainErr.Code)
}

func TestChatJSONEmptyChoices(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{})

	_, err := c.ChatJSON(context.Background(), nil)
	assert.Error(t, err)
}

func TestChatJSONMapsTimeout(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{chatErr: context.DeadlineExceeded})

	_, err := c.ChatJSON(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrProviderTimeout)
}

func TestChatJSONMapsUpstreamStatus(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{chatErr: &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}})

	_, err := c.ChatJSON(context.Background(), nil)
	require.Error(t, err)
	domainErr, ok := err.(*domain.DomainError)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeProviderError, domainErr.Code)
	assert.Contains(t, domainErr.Message, "503")
}

func TestEmbeddings(t *testing.T) {
	api := &fakeAPI{embedResp: openai.EmbeddingResponse{
		Data: []openai.Embedding{
			{Embedding: []float32{0.1, 0.2}},
			{Embedding: []float32{0.3, 0.4}},
		},
	}}
	c := NewClientWithAPI(api)

	vectors, err := c.Embeddings(context.Background(), []string{"first", "  ", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])

	// Blank inputs are dropped before calling the provider.
	assert.Equal(t, []string{"first", "second"}, api.lastEmbedReq.Input)
}

func TestEmbeddingsEmptyInput(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{})

	_, err := c.Embeddings(context.Background(), []string{"", "   "})
	assert.ErrorIs(t, err, domain.ErrEmbeddingsInputEmpty)
}

func TestEmbedQuery(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{embedResp: openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float32{1, 2, 3}}},
	}})

	vec, err := c.EmbedQuery(context.Background(), "курить при беременности")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}
