package translate

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// implements Completer against any OpenAI-compatible chat endpoint
// (LocalAI, Ollama, vLLM, Azure-style gateways)
type CompatCompleter struct {
	client *goopenai.Client
	model  string
}

func NewCompatCompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*CompatCompleter, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the compat provider")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required for the compat provider")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &CompatCompleter{
		client: goopenai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}, nil
}

func (c *CompatCompleter) Complete(
	ctx context.Context,
	system, user string,
) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		goopenai.ChatCompletionRequest{
			Model: c.model,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleSystem, Content: system},
				{Role: goopenai.ChatMessageRoleUser, Content: user},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	return compatText(resp)
}

func compatText(resp goopenai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from compat endpoint")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("no text in compat response")
	}
	return text, nil
}

func (c *CompatCompleter) Close() error {
	return nil
}
