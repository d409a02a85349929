package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/vani/internal/config"
	"github.com/mgpai22/vani/internal/output"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [config_file] [text_file] [locale...]",
	Short: "Translate a text file into one or more locales",
	Long: `Translate a text file with the chat provider and model named in the config
file. The text is split into sentence chunks of about the configured byte
threshold, each chunk is translated in order, and the results are written to
translation_<locale>.txt in the output directory, replacing any existing file.

Every locale is translated before any file is written.

Examples:
  vani translate config.ini transcript.txt fr
  vani translate config.ini transcript.txt fr de es hi --output-dir out`,
	Args: cobra.MinimumNArgs(3),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		String("output-dir", ".", "Directory for translation_<locale>.txt files")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	textPath := args[1]
	locales := args[2:]
	ctx := cmd.Context()

	apiKey, _ := cmd.Flags().GetString("api-key")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	data, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("text file is empty: %s", textPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	translator, err := newTranslator(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	defer translator.Close()
	if err := checkLocales(translator, locales); err != nil {
		return err
	}

	logger.Infow("Starting text translation",
		"input", textPath,
		"bytes", len(text),
		"locales", locales,
		"provider", cfg.TranslationProvider,
		"model", cfg.TextToTextModel,
	)

	translations := make([]string, len(locales))
	for i, locale := range locales {
		logger.Infow("Translating text", "locale", locale)
		translated, err := translator.Translate(ctx, text, locale)
		if err != nil {
			return fmt.Errorf("translation into %s failed: %w", locale, err)
		}
		translations[i] = translated
	}

	writer := output.NewWriter(outputDir, output.ModeOverwrite)
	for i, locale := range locales {
		path, err := writer.Write(locale, translations[i])
		if err != nil {
			return err
		}
		absPath, _ := filepath.Abs(path)
		fmt.Printf("Translation saved: %s\n", absPath)
	}

	return nil
}
