package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/vani/internal/audio"
	"github.com/mgpai22/vani/internal/output"
	"github.com/mgpai22/vani/internal/transcribe"
	"github.com/mgpai22/vani/internal/translate"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls int
	// invoked before each capture with the 1-based call number
	onRecord func(call int) error
}

func (r *fakeRecorder) Record(ctx context.Context, path string, duration time.Duration) (*audio.Clip, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()

	if r.onRecord != nil {
		if err := r.onRecord(call); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &audio.Clip{Path: path, Duration: duration}, nil
}

type fakeTranscriber struct {
	texts []string
	calls int
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	text := f.texts[f.calls%len(f.texts)]
	f.calls++
	return &transcribe.Result{Text: text, Language: "ur"}, nil
}

// prefixes the user text with the target language
type tagCompleter struct {
	failFor string
}

func (c *tagCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if c.failFor != "" && strings.HasSuffix(system, c.failFor) {
		return "", errors.New("503 service unavailable")
	}
	lang := strings.TrimPrefix(system, "Please translate the following text into ")
	return "[" + lang + "] " + user, nil
}

var locales = []string{"fr", "de", "es", "hi"}

func newTranslator(t *testing.T, c translate.Completer) *translate.Translator {
	t.Helper()
	tr, err := translate.NewTranslator(c, map[string]string{
		"fr": "French",
		"de": "German",
		"es": "Spanish",
		"hi": "Hindi",
	}, 1000)
	require.NoError(t, err)
	return tr
}

func newPipeline(
	t *testing.T,
	rec audio.Recorder,
	tr transcribe.Transcriber,
	c translate.Completer,
	w Writer,
	mode Mode,
) *Pipeline {
	t.Helper()
	p, err := New(rec, tr, newTranslator(t, c), w, nil, Options{
		Mode:     mode,
		Locales:  locales,
		ClipPath: "live_input_chunk.wav",
		Duration: 15 * time.Second,
		Pause:    time.Millisecond,
	})
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunOnceWritesEveryLocale(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	p := newPipeline(t, rec, &fakeTranscriber{texts: []string{"Hello. World"}},
		&tagCompleter{}, output.NewWriter(dir, output.ModeOverwrite), ModeOnce)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Cycles: 1}, summary)
	assert.Equal(t, 1, rec.calls)

	assert.Equal(t, "[French] Hello. World. ", readFile(t, filepath.Join(dir, "translation_fr.txt")))
	assert.Equal(t, "[German] Hello. World. ", readFile(t, filepath.Join(dir, "translation_de.txt")))
	assert.Equal(t, "[Spanish] Hello. World. ", readFile(t, filepath.Join(dir, "translation_es.txt")))
	assert.Equal(t, "[Hindi] Hello. World. ", readFile(t, filepath.Join(dir, "translation_hi.txt")))
}

func TestRunContinuousAppendsUntilInterrupted(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &fakeRecorder{onRecord: func(call int) error {
		if call == 3 {
			cancel()
		}
		return nil
	}}
	p := newPipeline(t, rec, &fakeTranscriber{texts: []string{"one", "two", "three"}},
		&tagCompleter{}, output.NewWriter(dir, output.ModeAppend), ModeContinuous)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 2, summary.Cycles)

	assert.Equal(t, "[French] one. \n[French] two. \n", readFile(t, filepath.Join(dir, "translation_fr.txt")))
	assert.Equal(t, "[Hindi] one. \n[Hindi] two. \n", readFile(t, filepath.Join(dir, "translation_hi.txt")))
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecorder{}
	p := newPipeline(t, rec, &fakeTranscriber{texts: []string{"x"}},
		&tagCompleter{}, output.NewWriter(t.TempDir(), output.ModeAppend), ModeContinuous)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Zero(t, summary.Cycles)
	assert.Zero(t, rec.calls)
}

func TestTranslationFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	p := newPipeline(t, &fakeRecorder{}, &fakeTranscriber{texts: []string{"Hello"}},
		&tagCompleter{failFor: "Spanish"}, output.NewWriter(dir, output.ModeAppend), ModeContinuous)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translation into es failed")
	assert.Contains(t, err.Error(), "503")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no locale file may be written when any translation fails")
}

func TestCaptureAndTranscriptionFailuresPropagate(t *testing.T) {
	captureErr := errors.New("no input device")
	p := newPipeline(t,
		&fakeRecorder{onRecord: func(int) error { return captureErr }},
		&fakeTranscriber{texts: []string{"x"}},
		&tagCompleter{}, output.NewWriter(t.TempDir(), output.ModeAppend), ModeOnce)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, captureErr)

	sttErr := errors.New("401 unauthorized")
	p = newPipeline(t, &fakeRecorder{}, &fakeTranscriber{err: sttErr},
		&tagCompleter{}, output.NewWriter(t.TempDir(), output.ModeAppend), ModeOnce)

	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, sttErr)
	assert.Contains(t, err.Error(), "transcription failed")
}

func TestEmptyTranscriptSkipsCycle(t *testing.T) {
	dir := t.TempDir()
	p := newPipeline(t, &fakeRecorder{}, &fakeTranscriber{texts: []string{"   "}},
		&tagCompleter{}, output.NewWriter(dir, output.ModeAppend), ModeOnce)

	result, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Empty(t, result.Files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunCycleReportsFiles(t *testing.T) {
	dir := t.TempDir()
	p := newPipeline(t, &fakeRecorder{}, &fakeTranscriber{texts: []string{"Hi"}},
		&tagCompleter{}, output.NewWriter(dir, output.ModeOverwrite), ModeOnce)

	first, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	second, err := p.RunCycle(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, first.Files, len(locales))
	assert.Equal(t, filepath.Join(dir, "translation_de.txt"), first.Files["de"])
}

func TestNewRejectsUnsupportedLocale(t *testing.T) {
	_, err := New(&fakeRecorder{}, &fakeTranscriber{texts: []string{"x"}},
		newTranslator(t, &tagCompleter{}), output.NewWriter(t.TempDir(), output.ModeAppend), nil,
		Options{
			Mode:     ModeContinuous,
			Locales:  []string{"fr", "xx"},
			ClipPath: "clip.wav",
			Duration: 15 * time.Second,
		})
	assert.ErrorIs(t, err, translate.ErrUnsupportedLocale)
}

func TestNewValidatesOptions(t *testing.T) {
	tr := newTranslator(t, &tagCompleter{})
	w := output.NewWriter(t.TempDir(), output.ModeAppend)
	base := Options{Mode: ModeOnce, Locales: locales, ClipPath: "clip.wav", Duration: time.Second}

	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"bad mode", func(o *Options) { o.Mode = "sometimes" }},
		{"no locales", func(o *Options) { o.Locales = nil }},
		{"no clip path", func(o *Options) { o.ClipPath = "" }},
		{"zero duration", func(o *Options) { o.Duration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			_, err := New(&fakeRecorder{}, &fakeTranscriber{texts: []string{"x"}}, tr, w, nil, opts)
			assert.Error(t, err)
		})
	}

	p, err := New(&fakeRecorder{}, &fakeTranscriber{texts: []string{"x"}}, tr, w, nil, base)
	require.NoError(t, err)
	assert.Equal(t, DefaultPause, p.opts.Pause)

	_, err = New(nil, &fakeTranscriber{}, tr, w, nil, base)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Continuous")
	require.NoError(t, err)
	assert.Equal(t, ModeContinuous, m)

	m, err = ParseMode(" once ")
	require.NoError(t, err)
	assert.Equal(t, ModeOnce, m)

	_, err = ParseMode("loop")
	assert.Error(t, err)
}
