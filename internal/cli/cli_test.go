package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mgpai22/vani/internal/output"
	"github.com/mgpai22/vani/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureDuration(t *testing.T) {
	tests := []struct {
		name    string
		mode    pipeline.Mode
		in      time.Duration
		want    time.Duration
		wantErr bool
	}{
		{"continuous default", pipeline.ModeContinuous, 0, 15 * time.Second, false},
		{"continuous custom", pipeline.ModeContinuous, 5 * time.Second, 5 * time.Second, false},
		{"continuous negative", pipeline.ModeContinuous, -time.Second, 0, true},
		{"once default", pipeline.ModeOnce, 0, 60 * time.Second, false},
		{"once lower bound", pipeline.ModeOnce, 15 * time.Second, 15 * time.Second, false},
		{"once upper bound", pipeline.ModeOnce, 60 * time.Second, 60 * time.Second, false},
		{"once too short", pipeline.ModeOnce, 14 * time.Second, 0, true},
		{"once too long", pipeline.ModeOnce, 61 * time.Second, 0, true},
		{"unknown mode", pipeline.Mode("loop"), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := captureDuration(tt.mode, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessDirName(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2026, time.March, 7, 14, 5, 9, 0, ist)

	assert.Equal(t, "live_process_07-03-2026-08-35-09", processDirName(ts))
}

func TestOutputMode(t *testing.T) {
	assert.Equal(t, output.ModeAppend, outputMode(pipeline.ModeContinuous))
	assert.Equal(t, output.ModeOverwrite, outputMode(pipeline.ModeOnce))
}

func TestRunRequiresFourLocales(t *testing.T) {
	assert.Error(t, runCmd.Args(runCmd, []string{"config.ini", "fr", "de", "es"}))
	assert.Error(t, runCmd.Args(runCmd, []string{"config.ini", "fr", "de", "es", "hi", "ja"}))
	assert.NoError(t, runCmd.Args(runCmd, []string{"config.ini", "fr", "de", "es", "hi"}))
}

// fakeChatServer answers OpenAI-style chat completions with a reply derived
// from the last user message.
func fakeChatServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var (
		mu       sync.Mutex
		received []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		system := req.Messages[0].Content
		user := req.Messages[len(req.Messages)-1].Content

		mu.Lock()
		received = append(received, user)
		mu.Unlock()

		lang := strings.TrimPrefix(system, "Please translate the following text into ")
		reply := fmt.Sprintf("%s:%s", lang, strings.TrimSpace(user))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "local-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	return srv, &received
}

func writeConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()

	content := fmt.Sprintf(`[translation_service_config]
locale_to_language_map = {"fr": "French", "de": "German"}

[openai_model_config]
speech_to_text_model = whisper-1
text_to_text_model = local-model
target_voice_bot = alloy
text_to_text_trans_threshold_in_bytes = 10

[provider_config]
transcription_provider = compat
translation_provider = compat
compat_base_url = %s/v1
`, baseURL)

	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTranslateCommand(t *testing.T) {
	srv, received := fakeChatServer(t)
	dir := t.TempDir()
	configPath := writeConfig(t, dir, srv.URL)

	textPath := filepath.Join(dir, "transcript.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Good morning. See you soon\n"), 0644))

	outDir := filepath.Join(dir, "out")
	rootCmd.SetArgs([]string{"translate", configPath, textPath, "fr", "de", "--output-dir", outDir})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	fr, err := os.ReadFile(filepath.Join(outDir, "translation_fr.txt"))
	require.NoError(t, err)
	assert.Equal(t, "French:Good morning.\nFrench:See you soon.", string(fr))

	de, err := os.ReadFile(filepath.Join(outDir, "translation_de.txt"))
	require.NoError(t, err)
	assert.Equal(t, "German:Good morning.\nGerman:See you soon.", string(de))

	// two chunks per locale, sent in order
	assert.Equal(t, []string{
		"Good morning. ", "See you soon. ",
		"Good morning. ", "See you soon. ",
	}, *received)
}

func TestTranslateCommandRejectsUnknownLocale(t *testing.T) {
	srv, received := fakeChatServer(t)
	dir := t.TempDir()
	configPath := writeConfig(t, dir, srv.URL)

	textPath := filepath.Join(dir, "transcript.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Hello"), 0644))

	outDir := filepath.Join(dir, "out")
	rootCmd.SetArgs([]string{"translate", configPath, textPath, "fr", "xx", "--output-dir", outDir})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xx")

	assert.Empty(t, *received)
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}
