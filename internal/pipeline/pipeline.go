package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/vani/internal/audio"
	"github.com/mgpai22/vani/internal/logging"
	"github.com/mgpai22/vani/internal/transcribe"
)

// looping strategy
type Mode string

const (
	ModeContinuous Mode = "continuous"
	ModeOnce       Mode = "once"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeContinuous:
		return ModeContinuous, nil
	case ModeOnce:
		return ModeOnce, nil
	default:
		return "", fmt.Errorf("unsupported mode %q: use continuous or once", s)
	}
}

const DefaultPause = time.Second

// translates a transcript into one locale
type Translator interface {
	Language(locale string) (string, error)
	Translate(ctx context.Context, transcript, locale string) (string, error)
}

// persists one locale's translation, returning the file path
type Writer interface {
	Write(locale, text string) (string, error)
}

type Options struct {
	Mode     Mode
	Locales  []string
	ClipPath string
	Duration time.Duration
	Pause    time.Duration // between continuous cycles (default 1s)
}

// Pipeline runs capture -> transcribe -> translate -> write cycles.
type Pipeline struct {
	recorder    audio.Recorder
	transcriber transcribe.Transcriber
	translator  Translator
	writer      Writer
	logger      *logging.Logger
	opts        Options
}

// New validates options and every requested locale up front so an
// unsupported locale fails before any audio is captured.
func New(
	recorder audio.Recorder,
	transcriber transcribe.Transcriber,
	translator Translator,
	writer Writer,
	logger *logging.Logger,
	opts Options,
) (*Pipeline, error) {
	if recorder == nil || transcriber == nil || translator == nil || writer == nil {
		return nil, errors.New("recorder, transcriber, translator and writer are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.Mode != ModeContinuous && opts.Mode != ModeOnce {
		return nil, fmt.Errorf("unsupported mode %q", opts.Mode)
	}
	if len(opts.Locales) == 0 {
		return nil, errors.New("at least one target locale is required")
	}
	if opts.ClipPath == "" {
		return nil, errors.New("clip path is required")
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("capture duration must be positive, got %v", opts.Duration)
	}
	if opts.Pause <= 0 {
		opts.Pause = DefaultPause
	}

	for _, locale := range opts.Locales {
		if _, err := translator.Language(locale); err != nil {
			return nil, err
		}
	}

	opts.Locales = append([]string(nil), opts.Locales...)

	return &Pipeline{
		recorder:    recorder,
		transcriber: transcriber,
		translator:  translator,
		writer:      writer,
		logger:      logger,
		opts:        opts,
	}, nil
}

// outcome of one cycle
type CycleResult struct {
	ID         string
	Transcript string
	Files      map[string]string // locale -> written file
}

// RunCycle records, transcribes and translates one clip. All locales are
// translated before any file is written, so a failed cycle writes nothing.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleResult, error) {
	id := uuid.NewString()
	log := p.logger.With("cycle_id", id)
	started := time.Now()

	log.Infow("Recording live audio chunk",
		"duration", p.opts.Duration.String(),
		"path", p.opts.ClipPath,
	)
	clip, err := p.recorder.Record(ctx, p.opts.ClipPath, p.opts.Duration)
	if err != nil {
		return nil, fmt.Errorf("audio capture failed: %w", err)
	}

	log.Infow("Transcribing audio chunk",
		"clip", clip.Path,
		"clip_duration", clip.Duration.String(),
	)
	result, err := p.transcriber.Transcribe(ctx, clip.Path)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	cycle := &CycleResult{
		ID:         id,
		Transcript: result.Text,
		Files:      map[string]string{},
	}

	log.Infow("Transcript", "text", result.Text, "language", result.Language)
	if strings.TrimSpace(result.Text) == "" {
		log.Warnw("Empty transcript, nothing to translate")
		return cycle, nil
	}

	translations := make([]string, len(p.opts.Locales))
	for i, locale := range p.opts.Locales {
		log.Infow("Translating transcript", "locale", locale)
		text, err := p.translator.Translate(ctx, result.Text, locale)
		if err != nil {
			return nil, fmt.Errorf("translation into %s failed: %w", locale, err)
		}
		translations[i] = text
	}

	for i, locale := range p.opts.Locales {
		path, err := p.writer.Write(locale, translations[i])
		if err != nil {
			return nil, err
		}
		cycle.Files[locale] = path
		log.Infow("Translation saved", "locale", locale, "path", path)
	}

	log.Debugw("Cycle complete", "elapsed", time.Since(started).String())
	return cycle, nil
}

// totals reported when Run returns
type Summary struct {
	Cycles      int
	Interrupted bool
}

// Run executes one cycle in once mode, or cycles with a fixed pause until
// ctx is cancelled in continuous mode. Cancellation is an interrupt, not an
// error: an in-flight cycle is abandoned and nothing from it is written.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	for {
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary, nil
		}

		cycle, err := p.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Debugw("Cycle abandoned on interrupt", "error", err)
				summary.Interrupted = true
				return summary, nil
			}
			return summary, err
		}
		summary.Cycles++
		p.logger.Infow("Cycle finished",
			"cycle", summary.Cycles,
			"cycle_id", cycle.ID,
			"files", len(cycle.Files),
		)

		if p.opts.Mode == ModeOnce {
			return summary, nil
		}

		timer := time.NewTimer(p.opts.Pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			summary.Interrupted = true
			return summary, nil
		case <-timer.C:
		}
	}
}
