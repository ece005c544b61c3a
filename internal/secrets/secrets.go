// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory is one secret: the filename is the key name
// and the trimmed file contents are the value.
//
// The only key the recommender reads is tmdb-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/movie-recommender/internal/logging"
)

// TMDBAPIKey is the file name holding the TMDb v3 API key.
const TMDBAPIKey = "tmdb-api-key"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.Warn().Str("secret", name).Err(err).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// TMDBKey returns the first non-empty value among the explicit key, the
// tmdb-api-key secret and the TMDB_API_KEY environment variable.
func TMDBKey(explicit string, secrets map[string]string) string {
	if explicit != "" {
		return explicit
	}
	if v := secrets[TMDBAPIKey]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("TMDB_API_KEY"))
}
