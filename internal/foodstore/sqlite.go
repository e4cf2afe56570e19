// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

const dbFile = "catalog.db"

// SQLiteStore is a nutrition catalogue indexed with SQLite FTS5. Catalogue
// files under the catalogue directory are ingested incrementally: a file
// is re-read only when its modification time changes.
//
// FTS5 requires building with -tags sqlite_fts5.
type SQLiteStore struct {
	db         *sql.DB
	catalogDir string
	indexDir   string
}

// NewSQLiteStore opens or creates the catalogue database at
// cfg.IndexDir/catalog.db and creates the schema if needed.
func NewSQLiteStore(cfg types.StoreConfig) (*SQLiteStore, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, catalogDir: cfg.CatalogDir, indexDir: cfg.IndexDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			nutrients TEXT NOT NULL,
			catalog_file TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_file ON entries(catalog_file)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			catalog_file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entries_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE entries_fts USING fts5(name, content=entries, content_rowid=rowid)`,
		`CREATE TRIGGER entries_ai AFTER INSERT ON entries BEGIN
			INSERT INTO entries_fts(rowid, name) VALUES (new.rowid, new.name);
		END`,
		`CREATE TRIGGER entries_ad AFTER DELETE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, name) VALUES('delete', old.rowid, old.name);
		END`,
		`CREATE TRIGGER entries_au AFTER UPDATE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, name) VALUES('delete', old.rowid, old.name);
			INSERT INTO entries_fts(rowid, name) VALUES (new.rowid, new.name);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one catalogue indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Entries int
}

// Total returns the number of catalogue files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed to ingest.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest indexes every catalogue file in the catalogue directory. New files
// are inserted, changed files replace their previous entries, unchanged
// files are skipped. Progress is written to w.
func (s *SQLiteStore) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	files, err := os.ReadDir(s.catalogDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading catalogue directory %s: %w", s.catalogDir, err)
	}

	var summary IngestSummary
	for _, f := range files {
		if f.IsDir() || !isCatalogFile(f.Name()) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		info, err := f.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Name(), err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE catalog_file = ?`, f.Name(),
		).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", f.Name())
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		entries, err := LoadCatalogFile(filepath.Join(s.catalogDir, f.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Name(), err)
			summary.Failed++
			continue
		}

		if err := s.ingestFile(ctx, f.Name(), entries, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Name(), err)
			summary.Failed++
			continue
		}

		summary.Entries += len(entries)
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d entries)\n", f.Name(), len(entries))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d entries)\n", f.Name(), len(entries))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *SQLiteStore) ingestFile(ctx context.Context, file string, entries []types.CandidateEntry, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE catalog_file = ?`, file); err != nil {
			return fmt.Errorf("deleting old entries: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entries (id, name, source_type, nutrients, catalog_file)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		nutrients, err := json.Marshal(e.Nutrients)
		if err != nil {
			return fmt.Errorf("encoding nutrients for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, string(e.SourceType), string(nutrients), file); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (catalog_file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(catalog_file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		file, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return tx.Commit()
}

// Search implements Store. Every query word must prefix-match a word of the
// entry name; when that finds nothing, any matching word is enough. Results
// are ranked by bm25.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error) {
	words := normalize.Words(query)
	if len(words) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 25
	}

	results, err := s.match(ctx, ftsQuery(words, " AND "), limit)
	if err != nil || len(results) > 0 || len(words) == 1 {
		return results, err
	}
	return s.match(ctx, ftsQuery(words, " OR "), limit)
}

func (s *SQLiteStore) match(ctx context.Context, match string, limit int) ([]types.CandidateEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.source_type, e.nutrients
		 FROM entries_fts
		 JOIN entries e ON e.rowid = entries_fts.rowid
		 WHERE entries_fts MATCH ?
		 ORDER BY bm25(entries_fts), e.id
		 LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalogue: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// All returns every indexed entry ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]types.CandidateEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_type, nutrients FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing catalogue: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of indexed entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n)
	return n, err
}

// Export writes the whole catalogue to path as YAML, or JSON for a .json
// path. An empty path writes index/export.yaml.
func (s *SQLiteStore) Export(ctx context.Context, path string) (string, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	if path == "" {
		path = filepath.Join(s.indexDir, "export.yaml")
	}
	return path, WriteCatalogFile(path, entries)
}

func scanEntries(rows *sql.Rows) ([]types.CandidateEntry, error) {
	var out []types.CandidateEntry
	for rows.Next() {
		var (
			e         types.CandidateEntry
			source    string
			nutrients string
		)
		if err := rows.Scan(&e.ID, &e.Name, &source, &nutrients); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.SourceType = types.SourceType(source)
		if err := json.Unmarshal([]byte(nutrients), &e.Nutrients); err != nil {
			return nil, fmt.Errorf("decoding nutrients for %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ftsQuery quotes each word and appends the FTS5 prefix operator.
func ftsQuery(words []string, op string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = `"` + strings.ReplaceAll(w, `"`, "") + `"*`
	}
	return strings.Join(parts, op)
}
