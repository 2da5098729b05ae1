// Package store persists position records in a DuckDB database. The store is
// append-only: records accumulate across runs with no deduplication, and no
// update or delete operations are exposed.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/genidx/internal/record"
)

// Store manages a DuckDB connection holding the variants table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path and ensures the
// variants table and its indices exist. Safe to call against an existing,
// populated store. Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the variants table, its id sequence, and both
// indices if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS variants_id_seq;

		CREATE TABLE IF NOT EXISTS variants (
			id BIGINT PRIMARY KEY DEFAULT nextval('variants_id_seq'),
			chrom VARCHAR NOT NULL,
			pos BIGINT NOT NULL,
			ref VARCHAR,
			alt VARCHAR,
			genotype VARCHAR,
			rsid VARCHAR,
			source_file VARCHAR,
			quality DOUBLE
		);

		CREATE INDEX IF NOT EXISTS idx_rsid ON variants(rsid);
		CREATE INDEX IF NOT EXISTS idx_pos ON variants(chrom, pos);
	`)
	return err
}

// InsertBatch persists a batch of records as one transaction: either every
// row in the batch becomes visible, or none do. Existing rows are never
// consulted; re-inserting the same records duplicates them.
func (s *Store) InsertBatch(records []record.PositionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO variants (chrom, pos, ref, alt, genotype, rsid, source_file, quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Chrom, r.Pos, r.Ref, r.Alt, r.Genotype,
			nullString(r.RSID), r.SourceFile, nullFloat(r.Quality),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert record %s:%d: %w", r.Chrom, r.Pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Count returns the total number of stored records.
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM variants").Scan(&count)
	return count, err
}

// CountBySource returns the number of stored records from one source file.
func (s *Store) CountBySource(name string) (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM variants WHERE source_file = ?", name).Scan(&count)
	return count, err
}

// nullString returns nil if s is empty, otherwise s.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullFloat returns nil if f is nil, otherwise its value.
func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
