package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

var (
	ErrMissingKey   = errors.New("missing configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
)

const (
	SectionTranslation = "translation_service_config"
	SectionModel       = "openai_model_config"
	SectionProvider    = "provider_config"
	SectionAudio       = "audio_config"

	DefaultProvider = "openai"
)

// matches Python configparser: keys are case-insensitive, values may span
// indented continuation lines and never carry inline comments
var loadOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	IgnoreInlineComment:        true,
	AllowPythonMultilineValues: true,
}

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	SpeechToTextModel     string
	TextToTextModel       string
	TargetVoiceBot        string
	ThresholdBytes        int
	TranscriptionProvider string
	TranslationProvider   string
	CompatBaseURL         string
	InputFormat           string
	InputDevice           string
	SourceLanguage        string

	languages map[string]string
}

// Language returns the target language name for a locale code.
func (c *Config) Language(locale string) (string, bool) {
	lang, ok := c.languages[locale]
	return lang, ok
}

// sorted copy of the configured locale codes
func (c *Config) Locales() []string {
	locales := make([]string, 0, len(c.languages))
	for locale := range c.languages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// copy of the locale map, safe to hand to other packages
func (c *Config) Languages() map[string]string {
	out := make(map[string]string, len(c.languages))
	for k, v := range c.languages {
		out[k] = v
	}
	return out
}

// reads the INI configuration file at path
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return parse(file)
}

// parses INI configuration from memory
func LoadBytes(data []byte) (*Config, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return parse(file)
}

func parse(file *ini.File) (*Config, error) {
	mapStr, err := required(file, SectionTranslation, "locale_to_language_map")
	if err != nil {
		return nil, err
	}

	languages, err := parseLanguageMap(mapStr)
	if err != nil {
		return nil, err
	}

	cfg := &Config{languages: languages}

	if cfg.SpeechToTextModel, err = required(file, SectionModel, "speech_to_text_model"); err != nil {
		return nil, err
	}
	if cfg.TextToTextModel, err = required(file, SectionModel, "text_to_text_model"); err != nil {
		return nil, err
	}
	if cfg.TargetVoiceBot, err = required(file, SectionModel, "target_voice_bot"); err != nil {
		return nil, err
	}

	thresholdStr, err := required(file, SectionModel, "text_to_text_trans_threshold_in_bytes")
	if err != nil {
		return nil, err
	}
	threshold, err := strconv.Atoi(thresholdStr)
	if err != nil || threshold <= 0 {
		return nil, fmt.Errorf(
			"%w: %s.text_to_text_trans_threshold_in_bytes must be a positive integer, got %q",
			ErrInvalidValue,
			SectionModel,
			thresholdStr,
		)
	}
	cfg.ThresholdBytes = threshold

	provider := file.Section(SectionProvider)
	cfg.TranscriptionProvider = strings.ToLower(
		provider.Key("transcription_provider").MustString(DefaultProvider),
	)
	cfg.TranslationProvider = strings.ToLower(
		provider.Key("translation_provider").MustString(DefaultProvider),
	)
	cfg.CompatBaseURL = strings.TrimSpace(provider.Key("compat_base_url").String())

	audio := file.Section(SectionAudio)
	cfg.InputFormat = strings.TrimSpace(audio.Key("input_format").String())
	cfg.InputDevice = strings.TrimSpace(audio.Key("input_device").String())
	cfg.SourceLanguage = strings.TrimSpace(audio.Key("source_language").String())

	if (cfg.TranscriptionProvider == "compat" || cfg.TranslationProvider == "compat") &&
		cfg.CompatBaseURL == "" {
		return nil, fmt.Errorf(
			"%w: %s.compat_base_url is required for the compat provider",
			ErrMissingKey,
			SectionProvider,
		)
	}

	return cfg, nil
}

func required(file *ini.File, section, key string) (string, error) {
	sec, err := file.GetSection(section)
	if err != nil {
		return "", fmt.Errorf("%w: section [%s]", ErrMissingKey, section)
	}
	if !sec.HasKey(key) {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, section, key)
	}
	value := strings.TrimSpace(sec.Key(key).String())
	if value == "" {
		return "", fmt.Errorf("%w: %s.%s is empty", ErrMissingKey, section, key)
	}
	return value, nil
}

func parseLanguageMap(s string) (map[string]string, error) {
	var languages map[string]string
	if err := json.Unmarshal([]byte(s), &languages); err != nil {
		return nil, fmt.Errorf(
			"%w: %s.locale_to_language_map is not a JSON object of strings: %v",
			ErrInvalidValue,
			SectionTranslation,
			err,
		)
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf(
			"%w: %s.locale_to_language_map is empty",
			ErrInvalidValue,
			SectionTranslation,
		)
	}
	return languages, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() (bool, error) {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return false, nil
	}
	if err := godotenv.Load(); err != nil {
		return false, fmt.Errorf("failed to load .env: %w", err)
	}
	return true, nil
}
