package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/plate-audit/internal/cache"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// lookupChunk keeps IN clauses well below SQLite's bound-parameter limit.
const lookupChunk = 500

var _ cache.IngredientCache = (*SQLiteCache)(nil)

// SQLiteCache implements cache.IngredientCache on SQLite so enrichment
// results survive between CLI runs.
type SQLiteCache struct {
	db     *sql.DB
	dbPath string
}

// CacheStats summarizes the persisted cache.
type CacheStats struct {
	LastUpdated time.Time
	Path        string
	Entries     int
}

// NewSQLiteCache opens (and creates if needed) the cache database at dbPath.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteCache{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

// Lookup implements cache.IngredientCache.
func (s *SQLiteCache) Lookup(ctx context.Context, keys []string) (map[string][]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	found := make(map[string][]string, len(keys))
	for start := 0; start < len(keys); start += lookupChunk {
		end := min(start+lookupChunk, len(keys))
		if err := s.lookupChunk(ctx, keys[start:end], found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (s *SQLiteCache) lookupChunk(ctx context.Context, keys []string, found map[string][]string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	//nolint:gosec // placeholders are generated, values are bound
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, ingredients FROM ingredient_cache WHERE name IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to query ingredient cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return fmt.Errorf("failed to scan cache row: %w", err)
		}

		var ingredients []string
		if err := json.Unmarshal([]byte(raw), &ingredients); err != nil {
			return fmt.Errorf("failed to decode ingredients for %q: %w", name, err)
		}
		found[name] = ingredients
	}

	return rows.Err()
}

// Store implements cache.IngredientCache.
func (s *SQLiteCache) Store(ctx context.Context, entries map[string][]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ingredient_cache (name, ingredients, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ingredients = excluded.ingredients,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for name, ingredients := range entries {
		if ingredients == nil {
			ingredients = []string{}
		}
		encoded, err := json.Marshal(ingredients)
		if err != nil {
			return fmt.Errorf("failed to encode ingredients for %q: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, name, string(encoded), now, now); err != nil {
			return fmt.Errorf("failed to store ingredients for %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache entries: %w", err)
	}
	return nil
}

// Stats reports the number of cached names and the most recent refresh.
func (s *SQLiteCache) Stats(ctx context.Context) (CacheStats, error) {
	stats := CacheStats{Path: s.dbPath}
	if err := validateContext(ctx); err != nil {
		return stats, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredient_cache`).Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("failed to count cache entries: %w", err)
	}
	if stats.Entries == 0 {
		return stats, nil
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT updated_at FROM ingredient_cache
		WHERE updated_at IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`).Scan(&stats.LastUpdated)
	if err != nil && err != sql.ErrNoRows {
		return stats, fmt.Errorf("failed to read last update: %w", err)
	}

	return stats, nil
}

// Clear removes every cached entry and returns how many were deleted.
func (s *SQLiteCache) Clear(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM ingredient_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear ingredient cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared entries: %w", err)
	}
	return deleted, nil
}
