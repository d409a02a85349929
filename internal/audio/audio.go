package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/vani/internal/ffmpeg"
)

// fixed capture profile accepted by the speech-to-text providers
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	codec         = "pcm_s16le"
)

// a recorded microphone clip
type Clip struct {
	Path     string
	Duration time.Duration
	Info     WAVInfo
}

// interface for fixed-duration audio capture
type Recorder interface {
	Record(ctx context.Context, path string, duration time.Duration) (*Clip, error)
}

// settings for microphone capture
type CaptureOptions struct {
	InputFormat string // ffmpeg input device format (alsa, pulse, avfoundation, dshow)
	Device      string // device name for that format
}

// ffmpeg input device defaults for the given OS
func DefaultCaptureOptions(goos string) CaptureOptions {
	switch goos {
	case "darwin":
		return CaptureOptions{InputFormat: "avfoundation", Device: ":0"}
	case "windows":
		return CaptureOptions{InputFormat: "dshow", Device: "audio=default"}
	default:
		return CaptureOptions{InputFormat: "alsa", Device: "default"}
	}
}

// implements Recorder by driving ffmpeg against a system input device
type FFmpegRecorder struct {
	options    CaptureOptions
	ffmpegPath func() (string, error)
}

// empty option fields fall back to DefaultCaptureOptions for this OS
func NewFFmpegRecorder(opts CaptureOptions) *FFmpegRecorder {
	defaults := DefaultCaptureOptions(runtime.GOOS)
	if opts.InputFormat == "" {
		opts.InputFormat = defaults.InputFormat
	}
	if opts.Device == "" {
		opts.Device = defaults.Device
	}
	return &FFmpegRecorder{
		options:    opts,
		ffmpegPath: ffmpegbin.FFmpegPath,
	}
}

func (r *FFmpegRecorder) Options() CaptureOptions {
	return r.options
}

// captureArgs builds the ffmpeg arguments for one clip
func captureArgs(opts CaptureOptions, path string, duration time.Duration) []string {
	return ffmpeg.Input(opts.Device, ffmpeg.KwArgs{"f": opts.InputFormat}).
		Output(path, ffmpeg.KwArgs{
			"t":      fmt.Sprintf("%.3f", duration.Seconds()),
			"ac":     Channels,
			"ar":     SampleRate,
			"acodec": codec,
		}).
		OverWriteOutput().
		GetArgs()
}

// records duration of audio into a mono 16-bit 16 kHz WAV file at path,
// blocking until the capture finishes or ctx is cancelled
func (r *FFmpegRecorder) Record(
	ctx context.Context,
	path string,
	duration time.Duration,
) (*Clip, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("capture duration must be positive, got %v", duration)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := r.ffmpegPath()
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, captureArgs(r.options, path, duration)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf(
			"audio capture failed: %w (%s)",
			err,
			lastLine(stderr.String()),
		)
	}

	return OpenClip(path)
}

// OpenClip reads the header of a recorded WAV file and checks it matches
// the capture profile.
func OpenClip(path string) (*Clip, error) {
	info, err := ReadWAVInfoFile(path)
	if err != nil {
		return nil, err
	}
	if err := info.CheckProfile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Clip{
		Path:     path,
		Duration: info.Duration(),
		Info:     info,
	}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an arbitrary audio file
func GetDuration(filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out.Bytes())
}

func parseProbeDuration(data []byte) (time.Duration, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, errors.New("ffprobe reported no duration")
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".webm": true,
		".aiff": true,
	}
	return audioExts[ext]
}
