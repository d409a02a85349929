package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mgpai22/vani/internal/config"
	"github.com/mgpai22/vani/internal/transcribe"
	"github.com/mgpai22/vani/internal/translate"
)

func newTranscriber(
	ctx context.Context,
	cfg *config.Config,
	apiKeyOverride string,
) (transcribe.Transcriber, error) {
	apiKey, err := config.APIKey(cfg.TranscriptionProvider, apiKeyOverride)
	if err != nil {
		return nil, err
	}

	tr, err := transcribe.Factory(
		ctx,
		transcribe.Provider(cfg.TranscriptionProvider),
		apiKey,
		transcribe.Options{
			Language: cfg.SourceLanguage,
			Model:    cfg.SpeechToTextModel,
			BaseURL:  cfg.CompatBaseURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return tr, nil
}

func newTranslator(
	ctx context.Context,
	cfg *config.Config,
	apiKeyOverride string,
) (*translate.Translator, error) {
	apiKey, err := config.APIKey(cfg.TranslationProvider, apiKeyOverride)
	if err != nil {
		return nil, err
	}

	completer, err := translate.Factory(
		ctx,
		translate.Provider(cfg.TranslationProvider),
		apiKey,
		translate.Options{
			Model:   cfg.TextToTextModel,
			BaseURL: cfg.CompatBaseURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	return translate.NewTranslator(
		completer,
		cfg.Languages(),
		cfg.ThresholdBytes,
	)
}

// rejects locales missing from the configured map before any work starts
func checkLocales(t *translate.Translator, locales []string) error {
	for _, locale := range locales {
		if _, err := t.Language(locale); err != nil {
			return err
		}
	}
	return nil
}

func closeTranscriber(t transcribe.Transcriber) {
	if c, ok := t.(io.Closer); ok {
		_ = c.Close()
	}
}
