package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/config"
)

// Client produces embeddings through an OpenAI-compatible API.
type Client struct {
	api     *openai.Client
	model   string
	dim     int
	timeout time.Duration
}

// NewClient creates the embedding client from the injected provider config.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   cfg.EmbeddingModel,
		dim:     cfg.EmbeddingDimension,
		timeout: time.Duration(cfg.EmbedTimeoutSecs) * time.Second,
	}, nil
}

// Embed returns the embedding vector for text. The provider call is bounded
// by the configured timeout and the response shape is validated here, so
// callers never see a partially decoded payload.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned from API")
	}

	// Copy so the response buffer is not retained by the index.
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	copy(vec, raw)
	return vec, nil
}

// Dimension returns the expected embedding dimensionality.
func (c *Client) Dimension() int {
	return c.dim
}

// ModelInfo identifies the embedding model for index tagging.
func (c *Client) ModelInfo() string {
	return c.model
}
