// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the credentials the pipeline needs.
// A credential comes from the environment first, then from a directory of
// plain-text files where the filename is the key name and the trimmed file
// contents are the value.
//
// Supported key files: openai-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// OpenAIKeyEnv is the environment variable holding the API key.
	OpenAIKeyEnv = "OPENAI_API_KEY"
	// OpenAIKeyFile is the secrets-directory file holding the API key.
	OpenAIKeyFile = "openai-api-key"
)

// ErrMissingAPIKey is returned when no API key is configured anywhere.
var ErrMissingAPIKey = errors.New("API key not found")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// APIKey returns the model API key from the environment, falling back to
// the loaded secrets. The error message tells the user how to provide one.
func APIKey(getenv func(string) string, loaded map[string]string) (string, error) {
	if v := strings.TrimSpace(getenv(OpenAIKeyEnv)); v != "" {
		return v, nil
	}
	if v, ok := loaded[OpenAIKeyFile]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: set the %s environment variable before running "+
		"(e.g. export %s='your-key') or write the key to .secrets/%s",
		ErrMissingAPIKey, OpenAIKeyEnv, OpenAIKeyEnv, OpenAIKeyFile)
}
