package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/vani/internal/audio"
	"github.com/mgpai22/vani/internal/config"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [config_file] [audio_file]",
	Short: "Transcribe an audio file with the configured provider",
	Long: `Transcribe an existing audio file with the speech-to-text provider and model
named in the config file, and print the transcript.

Examples:
  vani transcribe config.ini live_process_01-01-2026-10-00-00/live_input_chunk.wav
  vani transcribe config.ini interview.mp3 -v`,
	Args: cobra.ExactArgs(2),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	audioPath := args[1]
	ctx := cmd.Context()

	apiKey, _ := cmd.Flags().GetString("api-key")

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", audioPath)
	}
	if !audio.IsAudioFile(audioPath) {
		return fmt.Errorf("unsupported file type: %s (expected an audio file)", filepath.Ext(audioPath))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	transcriber, err := newTranscriber(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	defer closeTranscriber(transcriber)

	if duration, err := audio.GetDuration(audioPath); err != nil {
		logger.Warnw("Could not read audio duration", "error", err)
	} else {
		logger.Infow("Audio file", "path", audioPath, "duration", duration.String())
	}

	logger.Infow("Transcribing audio",
		"provider", cfg.TranscriptionProvider,
		"model", cfg.SpeechToTextModel,
	)

	result, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"language", result.Language,
		"duration", result.Duration.String(),
	)

	fmt.Println(result.Text)
	return nil
}
