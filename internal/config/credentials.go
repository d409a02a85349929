package config

import (
	"errors"
	"fmt"
	"os"
)

var ErrMissingCredential = errors.New("API key is not set")

// environment variables consulted per provider, in order
var credentialEnv = map[string][]string{
	"openai":    {"OAI_API_KEY", "OPENAI_API_KEY"},
	"gemini":    {"GEMINI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"compat":    {"COMPAT_API_KEY"},
}

// APIKey resolves the credential for provider. An explicit override (the
// --api-key flag) wins over the environment. Local OpenAI-compatible servers
// usually need no key, so compat may resolve to "".
func APIKey(provider, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	vars, ok := credentialEnv[provider]
	if !ok {
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	for _, name := range vars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}

	if provider == "compat" {
		return "", nil
	}

	return "", fmt.Errorf(
		"%w: use --api-key flag or set the %s environment variable",
		ErrMissingCredential,
		vars[0],
	)
}
