package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Embedder produces vector representations for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Chatter answers a prompt given a system message.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// OpenAIProvider talks to the OpenAI REST API for embeddings and chat
// completions.
type OpenAIProvider struct {
	http       *resty.Client
	embedModel string
	chatModel  string
}

// NewOpenAIProvider builds a provider against baseURL (e.g.
// "https://api.openai.com").
func NewOpenAIProvider(baseURL, apiKey, embedModel, chatModel string) *OpenAIProvider {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)
	return &OpenAIProvider{http: c, embedModel: embedModel, chatModel: chatModel}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// EmbedBatch embeds all inputs in a single API call, preserving order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embeddingsResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(embeddingsRequest{Model: p.embedModel, Input: texts}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/embeddings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || out.Error != nil {
		return nil, fmt.Errorf("openai embeddings: %s", apiErrString(resp.Status(), out.Error))
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(out.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Chat runs a single-turn chat completion.
func (p *OpenAIProvider) Chat(ctx context.Context, system, user string) (string, error) {
	var out chatResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: p.chatModel,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() || out.Error != nil {
		return "", fmt.Errorf("openai chat: %s", apiErrString(resp.Status(), out.Error))
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func apiErrString(status string, e *apiError) string {
	if e != nil && e.Message != "" {
		return e.Message
	}
	return status
}
