package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// how a locale file is updated on each write
type Mode int

const (
	// each write replaces the file
	ModeOverwrite Mode = iota
	// each write appends the text plus a newline
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeOverwrite:
		return "overwrite"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Writer persists translations as translation_<locale>.txt files in Dir.
type Writer struct {
	Dir  string
	Mode Mode
}

func NewWriter(dir string, mode Mode) *Writer {
	return &Writer{Dir: dir, Mode: mode}
}

// file path for a locale
func (w *Writer) Path(locale string) string {
	return filepath.Join(w.Dir, FileName(locale))
}

func FileName(locale string) string {
	return fmt.Sprintf("translation_%s.txt", sanitizeLocale(locale))
}

// locale codes come from the command line; keep them inside Dir
func sanitizeLocale(locale string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, locale)
}

// writes text for locale and returns the file path
func (w *Writer) Write(locale, text string) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(locale)

	switch w.Mode {
	case ModeOverwrite:
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	case ModeAppend:
		if err := appendFile(path, text+"\n"); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported output mode: %s", w.Mode)
	}

	return path, nil
}

func appendFile(path, text string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
