// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records pipeline runs in a local SQLite database so past
// questions, the documents that answered them, and their scores can be
// listed and exported later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rag/pkg/types"
)

const dbFile = "history.db"

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one completed pipeline invocation.
type Run struct {
	ID        int64     `json:"id" yaml:"id"`
	Query     string    `json:"query" yaml:"query"`
	Keywords  []string  `json:"keywords" yaml:"keywords"`
	Phrase    string    `json:"phrase" yaml:"phrase"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	Found             int `json:"found" yaml:"found"`
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`
	Extracted         int `json:"extracted" yaml:"extracted"`
	Dropped           int `json:"dropped" yaml:"dropped"`

	Answer    string        `json:"answer,omitempty" yaml:"answer,omitempty"`
	Documents []RunDocument `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// RunDocument is a ranked document attached to a run.
type RunDocument struct {
	Rank        int               `json:"rank" yaml:"rank"`
	Source      types.SourceTag   `json:"source" yaml:"source"`
	DocID       string            `json:"doc_id" yaml:"doc_id"`
	Title       string            `json:"title" yaml:"title"`
	ContentType types.ContentType `json:"content_type" yaml:"content_type"`
	Score       *float64          `json:"score,omitempty" yaml:"score,omitempty"`
	Citation    string            `json:"citation,omitempty" yaml:"citation,omitempty"`
}

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates dir/history.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			keywords TEXT,
			phrase TEXT,
			started_at TEXT NOT NULL,
			found INTEGER,
			dups_removed INTEGER,
			extracted INTEGER,
			dropped INTEGER,
			answer TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS run_documents (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			source TEXT,
			doc_id TEXT,
			title TEXT,
			content_type TEXT,
			score REAL,
			citation TEXT,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its documents in one transaction and returns the
// assigned run ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	kw, err := json.Marshal(run.Keywords)
	if err != nil {
		return 0, fmt.Errorf("marshaling keywords: %w", err)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, keywords, phrase, started_at, found, dups_removed, extracted, dropped, answer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Query, string(kw), run.Phrase, run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Found, run.DuplicatesRemoved, run.Extracted, run.Dropped, run.Answer,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, d := range run.Documents {
		var score sql.NullFloat64
		if d.Score != nil {
			score = sql.NullFloat64{Float64: *d.Score, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_documents (run_id, rank, source, doc_id, title, content_type, score, citation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.Rank, string(d.Source), d.DocID, d.Title, string(d.ContentType), score, d.Citation,
		); err != nil {
			return 0, fmt.Errorf("inserting document %d: %w", d.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

const runColumns = `id, query, keywords, phrase, started_at, found, dups_removed, extracted, dropped, answer`

// List returns the most recent runs first, without their documents. A
// non-positive limit returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, q, args...)
}

// Search returns runs whose query or answer contains term, most recent first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs
		WHERE query LIKE '%' || ? || '%' OR answer LIKE '%' || ? || '%'
		ORDER BY id DESC`
	args := []any{term, term}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, q, args...)
}

// Get returns one run with its documents in rank order.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	runs, err := s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	run := runs[0]
	if run.Documents, err = s.documents(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                     Run
			keywords, phrase, ans sql.NullString
			started               string
		)
		if err := rows.Scan(&r.ID, &r.Query, &keywords, &phrase, &started,
			&r.Found, &r.DuplicatesRemoved, &r.Extracted, &r.Dropped, &ans); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Phrase = phrase.String
		r.Answer = ans.String
		if keywords.Valid && keywords.String != "" {
			if err := json.Unmarshal([]byte(keywords.String), &r.Keywords); err != nil {
				return nil, fmt.Errorf("decoding keywords for run %d: %w", r.ID, err)
			}
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing start time for run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) documents(ctx context.Context, runID int64) ([]RunDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, source, doc_id, title, content_type, score, citation
		FROM run_documents WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []RunDocument
	for rows.Next() {
		var (
			d                       RunDocument
			source, ct, title, cite sql.NullString
			docID                   sql.NullString
			score                   sql.NullFloat64
		)
		if err := rows.Scan(&d.Rank, &source, &docID, &title, &ct, &score, &cite); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Source = types.SourceTag(source.String)
		d.DocID = docID.String
		d.Title = title.String
		d.ContentType = types.ContentType(ct.String)
		d.Citation = cite.String
		if score.Valid {
			v := score.Float64
			d.Score = &v
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ExportYAML writes every run, with documents, to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		if runs[i].Documents, err = s.documents(ctx, runs[i].ID); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes every run, with documents, to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		if runs[i].Documents, err = s.documents(ctx, runs[i].ID); err != nil {
			return err
		}
	}
	if runs == nil {
		runs = []Run{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// FromDocuments converts ranked documents into run documents, numbering
// ranks from 1 and attaching the matching citation when present.
func FromDocuments(docs []types.ProcessedDocument, citations []string) []RunDocument {
	out := make([]RunDocument, len(docs))
	for i, d := range docs {
		out[i] = RunDocument{
			Rank:        i + 1,
			Source:      d.Source,
			DocID:       d.ID,
			Title:       d.Title,
			ContentType: d.ContentType,
			Score:       d.RelevanceScore,
		}
		if i < len(citations) {
			out[i].Citation = citations[i]
		}
	}
	return out
}
