package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnsupportedLocale = errors.New("locale not supported")

// interface for a single system+user chat completion
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// completion service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderCompat    Provider = "compat"
)

type Options struct {
	Model   string
	BaseURL string // compat provider only
}

// creates Completer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Completer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAICompleter(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicCompleter(ctx, apiKey, opts)
	case ProviderCompat:
		return NewCompatCompleter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// system message sent with every chunk
func Instruction(language string) string {
	return fmt.Sprintf("Please translate the following text into %s", language)
}

// Translator translates transcripts chunk by chunk into configured locales.
type Translator struct {
	completer Completer
	languages map[string]string
	threshold int
}

// languages maps locale codes to language names; it is copied.
func NewTranslator(
	completer Completer,
	languages map[string]string,
	thresholdBytes int,
) (*Translator, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if thresholdBytes <= 0 {
		return nil, fmt.Errorf(
			"chunk threshold must be positive, got %d",
			thresholdBytes,
		)
	}

	langs := make(map[string]string, len(languages))
	for k, v := range languages {
		langs[k] = v
	}

	return &Translator{
		completer: completer,
		languages: langs,
		threshold: thresholdBytes,
	}, nil
}

// resolves a locale to its language name
func (t *Translator) Language(locale string) (string, error) {
	lang, ok := t.languages[locale]
	if !ok || lang == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
	}
	return lang, nil
}

// Translate sends each chunk of transcript to the completer in order and
// joins the translations with newlines. The first failing chunk aborts the
// whole locale.
func (t *Translator) Translate(
	ctx context.Context,
	transcript string,
	locale string,
) (string, error) {
	lang, err := t.Language(locale)
	if err != nil {
		return "", err
	}

	system := Instruction(lang)
	chunks := SplitChunks(transcript, t.threshold)

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := t.completer.Complete(ctx, system, chunk)
		if err != nil {
			return "", fmt.Errorf(
				"chunk %d/%d for %s failed: %w",
				i+1,
				len(chunks),
				locale,
				err,
			)
		}
		translated = append(translated, text)
	}

	return strings.Join(translated, "\n"), nil
}

// Close releases the completer when it holds resources.
func (t *Translator) Close() error {
	if c, ok := t.completer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
