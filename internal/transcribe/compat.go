package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// implements Transcriber against an OpenAI-compatible audio endpoint
// (LocalAI, faster-whisper-server, speaches)
type CompatTranscriber struct {
	client  *goopenai.Client
	model   string
	options Options
}

func NewCompatTranscriber(ctx context.Context, apiKey string, opts Options) (*CompatTranscriber, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the compat provider")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	model := opts.Model
	if model == "" {
		model = goopenai.Whisper1
	}

	return &CompatTranscriber{
		client:  goopenai.NewClientWithConfig(cfg),
		model:   model,
		options: opts,
	}, nil
}

func (t *CompatTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Language: t.options.Language,
		Prompt:   t.options.Prompt,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return compatResult(resp, t.options.Language), nil
}

func compatResult(resp goopenai.AudioResponse, fallbackLanguage string) *Result {
	lang := resp.Language
	if lang == "" {
		lang = fallbackLanguage
	}
	return &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: lang,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}
}

func (t *CompatTranscriber) Close() error {
	return nil
}
