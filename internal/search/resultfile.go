// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// ResultFile is the on-disk representation of an aggregated search. A saved
// search can be reloaded for extraction without re-querying the sources.
type ResultFile struct {
	Keywords []string                `yaml:"keywords"`
	Phrase   string                  `yaml:"phrase"`
	Budget   int                     `yaml:"budget"`
	Records  []types.CandidateRecord `yaml:"records"`
	Summary  ResultSummary           `yaml:"summary"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	SourceErrors      []string  `yaml:"source_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteResultFile saves keywords and aggregated records to a YAML file.
func WriteResultFile(path string, keywords []string, budget int, out Output) error {
	rf := ResultFile{
		Keywords: keywords,
		Phrase:   out.Phrase,
		Budget:   budget,
		Records:  out.Records,
		Summary: ResultSummary{
			Total:             len(out.Records),
			DuplicatesRemoved: out.DupsRemoved,
			SourceErrors:      out.SourceErrors,
			Timestamp:         time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
