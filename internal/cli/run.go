package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/vani/internal/audio"
	"github.com/mgpai22/vani/internal/config"
	"github.com/mgpai22/vani/internal/ffmpeg"
	"github.com/mgpai22/vani/internal/output"
	"github.com/mgpai22/vani/internal/pipeline"
	"github.com/spf13/cobra"
)

const (
	clipFileName = "live_input_chunk.wav"
	logFileName  = "live_translation.log"

	processDirPrefix = "live_process_"
	processDirLayout = "02-01-2006-15-04-05"

	defaultContinuousDuration = 15 * time.Second
	minOnceDuration           = 15 * time.Second
	maxOnceDuration           = 60 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run [config_file] [locale1] [locale2] [locale3] [locale4]",
	Short: "Translate live microphone audio into four languages",
	Long: `Record the microphone in fixed-length clips, transcribe each clip and
translate the transcript into four target locales.

Each run creates a live_process_<dd-mm-YYYY-HH-MM-SS> directory (UTC) holding
the current clip, the run log and one translation_<locale>.txt per locale.

In continuous mode clips are captured back to back with a one second pause and
translations are appended until the process is interrupted. In once mode a
single clip of 15 to 60 seconds is captured and each file holds its
translation.

Examples:
  vani run config.ini fr de es hi
  vani run config.ini fr de es hi --mode once --duration 45s
  vani run config.ini ja ko zh en --workdir /tmp/sessions -v`,
	Args: cobra.ExactArgs(5),
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().
		String("mode", string(pipeline.ModeContinuous), "Run mode (continuous, once)")
	runCmd.Flags().
		Duration("duration", 0, "Capture length per clip (default 15s continuous, 60s once)")
	runCmd.Flags().
		String("workdir", ".", "Directory in which the process directory is created")
}

// resolves the clip length for a mode; zero means the mode's default
func captureDuration(mode pipeline.Mode, d time.Duration) (time.Duration, error) {
	switch mode {
	case pipeline.ModeOnce:
		if d == 0 {
			return maxOnceDuration, nil
		}
		if d < minOnceDuration || d > maxOnceDuration {
			return 0, fmt.Errorf(
				"once mode duration must be between %v and %v, got %v",
				minOnceDuration,
				maxOnceDuration,
				d,
			)
		}
		return d, nil
	case pipeline.ModeContinuous:
		if d == 0 {
			return defaultContinuousDuration, nil
		}
		if d < 0 {
			return 0, fmt.Errorf("duration must be positive, got %v", d)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("unsupported mode %q", mode)
	}
}

// continuous runs accumulate; a single capture owns its files
func outputMode(mode pipeline.Mode) output.Mode {
	if mode == pipeline.ModeOnce {
		return output.ModeOverwrite
	}
	return output.ModeAppend
}

func processDirName(t time.Time) string {
	return processDirPrefix + t.UTC().Format(processDirLayout)
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	configPath := args[0]
	locales := args[1:]

	modeStr, _ := cmd.Flags().GetString("mode")
	durationFlag, _ := cmd.Flags().GetDuration("duration")
	workdir, _ := cmd.Flags().GetString("workdir")
	apiKey, _ := cmd.Flags().GetString("api-key")

	mode, err := pipeline.ParseMode(modeStr)
	if err != nil {
		return err
	}
	duration, err := captureDuration(mode, durationFlag)
	if err != nil {
		return err
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

	transcriber, err := newTranscriber(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	defer closeTranscriber(transcriber)

	bins, err := ffmpeg.Resolve()
	if err != nil {
		return fmt.Errorf("ffmpeg is required for audio capture: %w", err)
	}

	processDir := filepath.Join(workdir, processDirName(time.Now()))
	if err := os.MkdirAll(processDir, 0755); err != nil {
		return fmt.Errorf("failed to create process directory: %w", err)
	}

	runLogger, err := logger.WithFile(filepath.Join(processDir, logFileName))
	if err != nil {
		return err
	}
	defer runLogger.Close()

	recorder := audio.NewFFmpegRecorder(audio.CaptureOptions{
		InputFormat: cfg.InputFormat,
		Device:      cfg.InputDevice,
	})
	writer := output.NewWriter(processDir, outputMode(mode))

	p, err := pipeline.New(recorder, transcriber, translator, writer, runLogger, pipeline.Options{
		Mode:     mode,
		Locales:  locales,
		ClipPath: filepath.Join(processDir, clipFileName),
		Duration: duration,
	})
	if err != nil {
		return err
	}

	captureOpts := recorder.Options()
	runLogger.Infow("Starting live translation",
		"mode", string(mode),
		"duration", duration.String(),
		"locales", locales,
		"process_dir", processDir,
		"transcription_provider", cfg.TranscriptionProvider,
		"translation_provider", cfg.TranslationProvider,
		"speech_to_text_model", cfg.SpeechToTextModel,
		"text_to_text_model", cfg.TextToTextModel,
		"threshold_bytes", cfg.ThresholdBytes,
		"input_format", captureOpts.InputFormat,
		"input_device", captureOpts.Device,
		"ffmpeg", bins.FFmpeg,
	)

	summary, err := p.Run(ctx)
	if err != nil {
		runLogger.Errorw("Translation process failed",
			"error", err,
			"cycles", summary.Cycles,
		)
		return err
	}

	runLogger.Infow("Translation process finished",
		"cycles", summary.Cycles,
		"interrupted", summary.Interrupted,
	)

	if summary.Interrupted {
		fmt.Println("Translation process interrupted by user.")
	}

	absDir, _ := filepath.Abs(processDir)
	fmt.Printf("Translations saved in: %s\n", absDir)
	fmt.Printf("  Cycles: %d\n", summary.Cycles)
	for _, locale := range locales {
		fmt.Printf("  %s\n", writer.Path(locale))
	}

	return nil
}
