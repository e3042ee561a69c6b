// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tana/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		media_type TEXT NOT NULL,
		status TEXT NOT NULL,
		score REAL,
		global_score REAL,
		progress INTEGER NOT NULL DEFAULT 0,
		total_units INTEGER,
		poster_url TEXT,
		source TEXT,
		external_id TEXT,
		notes TEXT,
		tags TEXT,
		favorite INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_media_items_media_type ON media_items(media_type);
	CREATE INDEX IF NOT EXISTS idx_media_items_status ON media_items(status);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_media_items_source_external
		ON media_items(source, external_id)
		WHERE source IS NOT NULL AND external_id IS NOT NULL;
	`
	_, err := db.Exec(schema)
	return err
}

const itemColumns = `id, title, media_type, status, score, global_score, progress,
	total_units, poster_url, source, external_id, notes, tags, favorite, created_at, updated_at`

// CreateItem inserts a library item.
func (s *SQLiteStorage) CreateItem(ctx context.Context, item *models.MediaItem) error {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO media_items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.MediaType, item.Status, item.Score, item.GlobalScore,
		item.Progress, item.TotalUnits, item.PosterURL, item.Source, item.ExternalID,
		item.Notes, string(tagsJSON), item.Favorite, item.CreatedAt, item.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, item.Title)
	}
	return err
}

// GetItem returns a library item by ID.
func (s *SQLiteStorage) GetItem(ctx context.Context, id string) (*models.MediaItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM media_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem updates an existing library item.
func (s *SQLiteStorage) UpdateItem(ctx context.Context, item *models.MediaItem) error {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	item.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE media_items SET title = ?, media_type = ?, status = ?, score = ?,
		 global_score = ?, progress = ?, total_units = ?, poster_url = ?, source = ?,
		 external_id = ?, notes = ?, tags = ?, favorite = ?, updated_at = ?
		 WHERE id = ?`,
		item.Title, item.MediaType, item.Status, item.Score, item.GlobalScore,
		item.Progress, item.TotalUnits, item.PosterURL, item.Source, item.ExternalID,
		item.Notes, string(tagsJSON), item.Favorite, item.UpdatedAt, item.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, item.Title)
	}
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, item.ID)
	}
	return nil
}

// DeleteItem removes a library item by ID.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListItems returns items matching filter, newest first. A non-positive
// limit returns all matches.
func (s *SQLiteStorage) ListItems(ctx context.Context, filter ListFilter, offset, limit int) ([]*models.MediaItem, error) {
	var where []string
	var args []any
	if filter.MediaType != "" {
		where = append(where, "media_type = ?")
		args = append(args, filter.MediaType)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Favorite != nil {
		where = append(where, "favorite = ?")
		args = append(args, *filter.Favorite)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array, so match the quoted form.
		where = append(where, "tags LIKE ?")
		args = append(args, "%"+string(mustMarshalString(filter.Tag))+"%")
	}

	query := `SELECT ` + itemColumns + ` FROM media_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountItems returns the total number of library items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&count)
	return count, err
}

// Stats aggregates library counts by status and media type. The counting
// rules live on models.Stats so the library and API always agree.
func (s *SQLiteStorage) Stats(ctx context.Context) (*models.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT media_type, status FROM media_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.Stats{}
	for rows.Next() {
		var item models.MediaItem
		if err := rows.Scan(&item.MediaType, &item.Status); err != nil {
			return nil, err
		}
		stats.Count(&item)
	}
	return stats, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.MediaItem, error) {
	var item models.MediaItem
	var tagsJSON sql.NullString
	if err := row.Scan(
		&item.ID, &item.Title, &item.MediaType, &item.Status, &item.Score,
		&item.GlobalScore, &item.Progress, &item.TotalUnits, &item.PosterURL,
		&item.Source, &item.ExternalID, &item.Notes, &tagsJSON, &item.Favorite,
		&item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &item.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func mustMarshalString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}
