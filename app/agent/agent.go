// Package agent wraps the chat-completion provider. Retrieved context is
// injected as a system-level instruction; output comes back either whole or
// as a stream of chunks.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"ragchat/config"
)

const systemPromptPrefix = "请结合以下上下文信息回答问题："

// StreamChunk is one provider-delivered piece of a streamed reply. A chunk
// with a non-nil Err is always the last one on the channel.
type StreamChunk struct {
	Content string
	Err     error
}

// Engine calls the chat-completion provider.
type Engine struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine creates the completion engine from the injected provider config.
func NewEngine(cfg config.OpenAIConfig) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Engine{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   cfg.ChatModel,
		timeout: time.Duration(cfg.ChatTimeoutSecs) * time.Second,
		logger:  slog.Default(),
	}, nil
}

// Complete returns the whole trimmed reply for userMessage with context
// injected as the system instruction.
func (e *Engine) Complete(ctx context.Context, userMessage, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	messages := buildMessages(userMessage, contextText)
	e.logPromptSize(messages)

	resp, err := e.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteStream yields reply chunks in provider emission order. A failure
// mid-stream is delivered as the final chunk's Err and the channel closes;
// nothing escapes past the channel boundary. The consumer stops receiving
// chunks once ctx is cancelled.
func (e *Engine) CompleteStream(ctx context.Context, userMessage, contextText string) (<-chan StreamChunk, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)

	messages := buildMessages(userMessage, contextText)
	e.logPromptSize(messages)

	stream, err := e.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: 0.7,
		Stream:      true,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer cancel()
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case ch <- StreamChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}

			content := resp.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			select {
			case ch <- StreamChunk{Content: content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func buildMessages(userMessage, contextText string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPromptPrefix + contextText},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	}
}

func (e *Engine) logPromptSize(messages []openai.ChatCompletionMessage) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
	}
	count, err := countTokens(e.model, b.String())
	if err != nil {
		return
	}
	e.logger.Debug("prompt built", "tokens", count, "bytes", b.Len())
}

func countTokens(modelName, text string) (int, error) {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		// Unknown model names fall back to the gpt-3.5-turbo encoding.
		enc, err = tiktoken.EncodingForModel("gpt-3.5-turbo")
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(text, nil, nil)), nil
}
