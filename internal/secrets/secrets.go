// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials kept outside the config file. A secrets
// directory holds one file per credential; the file name is the key and the
// trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// Key file names understood by Apply.
const (
	LLMAPIKey       = "llm-api-key"
	EmbeddingAPIKey = "embedding-api-key"
	OpenAlexEmail   = "openalex-email"
)

var known = map[string]bool{LLMAPIKey: true, EmbeddingAPIKey: true, OpenAlexEmail: true}

// Load returns the non-empty secrets found in dir. A missing directory yields
// an empty map. Dotfiles, subdirectories, and unreadable files are skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return map[string]string{}, nil
	case err != nil:
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	log := slog.Default().With("component", "secrets")
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		value, err := readValue(filepath.Join(dir, name))
		if err != nil {
			log.Warn("skipping unreadable secret", "name", name, "err", err)
			continue
		}
		if value == "" {
			continue
		}
		if !known[name] {
			log.Debug("secret has no config binding", "name", name)
		}
		out[name] = value
	}
	return out, nil
}

func readValue(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Apply copies secrets into cfg fields that are still empty, so values set by
// the config file, flags, or environment take precedence.
func Apply(cfg *types.PipelineConfig, s map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = s[key]
		}
	}
	fill(&cfg.LLM.APIKey, LLMAPIKey)
	fill(&cfg.LLM.EmbeddingAPIKey, EmbeddingAPIKey)
	fill(&cfg.Search.OpenAlexEmail, OpenAlexEmail)
}
