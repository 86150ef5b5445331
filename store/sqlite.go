package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aluiziolira/go-manga-series/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	manga_id   TEXT PRIMARY KEY,
	complete   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS series_fields (
	manga_id TEXT NOT NULL REFERENCES series(manga_id) ON DELETE CASCADE,
	field    TEXT NOT NULL,
	value    TEXT NOT NULL,
	PRIMARY KEY (manga_id, field)
);
`

// SQLite is a file-backed store.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetSeries returns the stored record for mangaID when it is complete.
func (s *SQLite) GetSeries(ctx context.Context, mangaID string) (models.SeriesRecord, bool, error) {
	var complete bool
	err := s.db.QueryRowContext(ctx,
		`SELECT complete FROM series WHERE manga_id = ?`, mangaID,
	).Scan(&complete)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SeriesRecord{}, false, nil
	}
	if err != nil {
		return models.SeriesRecord{}, false, fmt.Errorf("getting series: %w", err)
	}
	if !complete {
		return models.SeriesRecord{}, false, nil
	}

	rec, err := s.loadFields(ctx, mangaID)
	if err != nil {
		return models.SeriesRecord{}, false, err
	}
	rec.Complete = true
	return rec, true, nil
}

// GetField returns one stored field value for mangaID.
func (s *SQLite) GetField(ctx context.Context, mangaID, field string) (any, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM series_fields WHERE manga_id = ? AND field = ?`, mangaID, field,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting field: %w", err)
	}

	v, err := decodeValue(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding field %s: %w", field, err)
	}
	return v, true, nil
}

// PutSeries upserts the series row and each of its fields in one transaction.
// Completeness is never lowered.
func (s *SQLite) PutSeries(ctx context.Context, rec models.SeriesRecord) error {
	if rec.MangaID == "" {
		return fmt.Errorf("put series: empty manga id")
	}

	encoded := make(map[string]string, len(rec.Fields))
	for field, v := range rec.Fields {
		raw, err := encodeValue(v)
		if err != nil {
			return fmt.Errorf("put series %s field %s: %w", rec.MangaID, field, err)
		}
		encoded[field] = raw
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO series (manga_id, complete, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(manga_id) DO UPDATE SET
			complete = MAX(series.complete, excluded.complete),
			updated_at = excluded.updated_at
	`, rec.MangaID, rec.Complete, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving series: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series_fields (manga_id, field, value)
		VALUES (?, ?, ?)
		ON CONFLICT(manga_id, field) DO UPDATE SET
			value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("preparing field statement: %w", err)
	}
	defer stmt.Close()

	for field, raw := range encoded {
		if _, err := stmt.ExecContext(ctx, rec.MangaID, field, raw); err != nil {
			return fmt.Errorf("saving field %s: %w", field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListSeries returns every complete record, ordered by id.
func (s *SQLite) ListSeries(ctx context.Context) ([]models.SeriesRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.manga_id, f.field, f.value
		FROM series_fields f
		JOIN series s ON s.manga_id = f.manga_id
		WHERE s.complete = 1
		ORDER BY f.manga_id, f.field
	`)
	if err != nil {
		return nil, fmt.Errorf("listing series: %w", err)
	}
	defer rows.Close()

	var out []models.SeriesRecord
	for rows.Next() {
		var id, field, raw string
		if err := rows.Scan(&id, &field, &raw); err != nil {
			return nil, fmt.Errorf("scanning series row: %w", err)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s field %s: %w", id, field, err)
		}
		if len(out) == 0 || out[len(out)-1].MangaID != id {
			rec := models.NewSeriesRecord(id)
			rec.Complete = true
			out = append(out, rec)
		}
		out[len(out)-1].Fields[field] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating series rows: %w", err)
	}
	return out, nil
}

func (s *SQLite) loadFields(ctx context.Context, mangaID string) (models.SeriesRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value FROM series_fields WHERE manga_id = ?`, mangaID)
	if err != nil {
		return models.SeriesRecord{}, fmt.Errorf("getting series fields: %w", err)
	}
	defer rows.Close()

	rec := models.NewSeriesRecord(mangaID)
	for rows.Next() {
		var field, raw string
		if err := rows.Scan(&field, &raw); err != nil {
			return models.SeriesRecord{}, fmt.Errorf("scanning field row: %w", err)
		}
		v, err := decodeValue(raw)
		if err != nil {
			return models.SeriesRecord{}, fmt.Errorf("decoding field %s: %w", field, err)
		}
		rec.Fields[field] = v
	}
	if err := rows.Err(); err != nil {
		return models.SeriesRecord{}, fmt.Errorf("iterating field rows: %w", err)
	}
	return rec, nil
}
