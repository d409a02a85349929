package ffmpeg

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"darwin", "arm64", "", true},
		{"freebsd", "amd64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetForPlatform(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assetForPlatform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("assetForPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBinaryName(t *testing.T) {
	tests := map[string]string{
		"ffmpeg":      "ffmpeg",
		"FFMPEG.EXE":  "ffmpeg",
		"ffprobe":     "ffprobe",
		"ffprobe.exe": "ffprobe",
		"ffplay":      "",
		"readme.txt":  "",
	}
	for in, want := range tests {
		if got := binaryName(in); got != want {
			t.Errorf("binaryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestExtractArchive(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"bin/ffmpeg":  "ffmpeg-binary",
		"bin/ffprobe": "ffprobe-binary",
		"LICENSE":     "gpl",
	})
	installDir := t.TempDir()

	if err := extractArchive(archive, installDir, "linux"); err != nil {
		t.Fatalf("extractArchive() error: %v", err)
	}

	paths := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"),
		FFprobe: filepath.Join(installDir, "ffprobe"),
	}
	if !binariesExist(paths) {
		t.Fatal("expected both binaries to be extracted")
	}
	if _, err := os.Stat(filepath.Join(installDir, "LICENSE")); !os.IsNotExist(err) {
		t.Error("non-binary entries should not be extracted")
	}
}

func TestExtractArchiveWindowsSuffix(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"ffmpeg.exe":  "x",
		"ffprobe.exe": "y",
	})
	installDir := t.TempDir()

	if err := extractArchive(archive, installDir, "windows"); err != nil {
		t.Fatalf("extractArchive() error: %v", err)
	}
	if !fileExists(filepath.Join(installDir, "ffmpeg.exe")) {
		t.Error("expected ffmpeg.exe")
	}
}

func TestExtractArchiveMissingBinary(t *testing.T) {
	archive := writeZip(t, map[string]string{"ffmpeg": "only-one"})

	if err := extractArchive(archive, t.TempDir(), "linux"); err == nil {
		t.Error("expected error when ffprobe is missing")
	}
}

func TestFromEnvOrPathPrefersEnv(t *testing.T) {
	t.Setenv(EnvFFmpegPath, "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv(EnvFFprobePath, "/opt/ffmpeg/bin/ffprobe")

	paths := fromEnvOrPath()
	if paths.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" || paths.FFprobe != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("fromEnvOrPath() = %+v", paths)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if fileExists(empty) {
		t.Error("empty file should not count as an installed binary")
	}
	if fileExists(dir) {
		t.Error("directory should not count as an installed binary")
	}
	if fileExists(filepath.Join(dir, "missing")) {
		t.Error("missing file should not exist")
	}
}
