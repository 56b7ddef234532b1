// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rag/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// DocumentStore keeps downloaded primary documents under <dir>/raw and
// extraction results as YAML under <dir>/metadata. A nil *DocumentStore is
// valid and stores nothing.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the store directories under dir.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	for _, sub := range []string{rawDir, metadataDir} {
		p := filepath.Join(dir, sub)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", p, err)
		}
	}
	return &DocumentStore{dir: dir}, nil
}

// Slug returns a filesystem-safe filename stem for rec, prefixed with its
// source so identifiers from different sources never collide.
func Slug(rec types.CandidateRecord) string {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		h := sha256.Sum256([]byte(rec.Title))
		id = fmt.Sprintf("title-%x", h[:8])
	}
	return string(rec.Source) + "-" + strings.NewReplacer("/", "-", ":", "-", "\\", "-").Replace(id)
}

func (s *DocumentStore) primaryPath(rec types.CandidateRecord) string {
	return filepath.Join(s.dir, rawDir, Slug(rec)+".pdf")
}

func (s *DocumentStore) metadataPath(rec types.CandidateRecord) string {
	return filepath.Join(s.dir, metadataDir, Slug(rec)+".yaml")
}

// LoadPrimary returns a previously saved primary document for rec.
func (s *DocumentStore) LoadPrimary(rec types.CandidateRecord) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	data, err := os.ReadFile(s.primaryPath(rec))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// SavePrimary writes data through a temporary file and renames it into
// place, so a crash never leaves a truncated document behind.
func (s *DocumentStore) SavePrimary(rec types.CandidateRecord, data []byte) error {
	if s == nil {
		return nil
	}
	return writeAtomic(s.primaryPath(rec), data)
}

// SaveRecord writes the extraction result for er as YAML.
func (s *DocumentStore) SaveRecord(er *types.ExtractedRecord) error {
	if s == nil {
		return nil
	}
	data, err := yaml.Marshal(er)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return writeAtomic(s.metadataPath(er.CandidateRecord), data)
}

// LoadRecord reads a saved extraction result for rec.
func (s *DocumentStore) LoadRecord(rec types.CandidateRecord) (*types.ExtractedRecord, error) {
	if s == nil {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(s.metadataPath(rec))
	if err != nil {
		return nil, err
	}
	var er types.ExtractedRecord
	if err := yaml.Unmarshal(data, &er); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &er, nil
}

func writeAtomic(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", destPath, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
