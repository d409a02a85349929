package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/vani/internal/audio"
	"github.com/mgpai22/vani/internal/config"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [output_file]",
	Short: "Capture one clip from the microphone",
	Long: `Capture a single mono 16 kHz WAV clip from the default input device.

Useful for checking the microphone and the ffmpeg input settings before a
live run. The input device can be taken from a config file's [audio_config]
section or set with flags.

Examples:
  vani record test.wav
  vani record test.wav --duration 5s
  vani record test.wav --config config.ini
  vani record test.wav --input-format pulse --device default`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().
		Duration("duration", defaultContinuousDuration, "Capture length")
	recordCmd.Flags().
		String("config", "", "Config file whose [audio_config] selects the input device")
	recordCmd.Flags().
		String("input-format", "", "ffmpeg input format (alsa, pulse, avfoundation, dshow)")
	recordCmd.Flags().
		String("device", "", "Input device name for the input format")
}

func runRecord(cmd *cobra.Command, args []string) error {
	outputPath := args[0]
	ctx := cmd.Context()

	duration, _ := cmd.Flags().GetDuration("duration")
	configPath, _ := cmd.Flags().GetString("config")
	inputFormat, _ := cmd.Flags().GetString("input-format")
	device, _ := cmd.Flags().GetString("device")

	if !strings.EqualFold(filepath.Ext(outputPath), ".wav") {
		return fmt.Errorf("output file must be a .wav file: %s", outputPath)
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	opts := audio.CaptureOptions{InputFormat: inputFormat, Device: device}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if opts.InputFormat == "" {
			opts.InputFormat = cfg.InputFormat
		}
		if opts.Device == "" {
			opts.Device = cfg.InputDevice
		}
	}

	recorder := audio.NewFFmpegRecorder(opts)
	captureOpts := recorder.Options()

	logger.Infow("Recording clip",
		"output", outputPath,
		"duration", duration.String(),
		"input_format", captureOpts.InputFormat,
		"input_device", captureOpts.Device,
	)

	started := time.Now()
	clip, err := recorder.Record(ctx, outputPath, duration)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Recording interrupted by user.")
			return nil
		}
		return err
	}

	logger.Debugw("Recording complete", "elapsed", time.Since(started).String())

	absOutput, _ := filepath.Abs(clip.Path)
	fmt.Printf("Clip recorded: %s\n", absOutput)
	fmt.Printf("  Duration: %s\n", clip.Duration)
	fmt.Printf("  Format: %d Hz, %d channel(s), %d-bit\n",
		clip.Info.SampleRate,
		clip.Info.Channels,
		clip.Info.BitsPerSample,
	)

	return nil
}
