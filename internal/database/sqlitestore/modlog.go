package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"modsentry/internal/modlog"
)

// ModLogStore implements modlog.Store using SQLite.
type ModLogStore struct {
	db *sql.DB
}

// NewModLogStore creates a ModLogStore backed by the given database.
// The database must already have the schema applied.
func NewModLogStore(db *sql.DB) *ModLogStore {
	return &ModLogStore{db: db}
}

// Ensure ModLogStore implements the interface at compile time.
var _ modlog.Store = (*ModLogStore)(nil)

func (s *ModLogStore) InsertMany(ctx context.Context, subreddit string, entries []modlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO modlog_entries (subreddit, author, mod, action, kind, timestamp, permalink, title, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.Subreddit, e.Author, e.Mod, e.Action, string(e.Kind),
			e.Timestamp, e.Permalink, e.Title, e.Body)
		if err != nil {
			return fmt.Errorf("failed to insert mod log entry: %w", err)
		}
	}

	return tx.Commit()
}

func (s *ModLogStore) GetEntries(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subreddit, author, mod, action, kind, timestamp, permalink, title, body
		FROM modlog_entries
		WHERE lower(subreddit) = ?
		ORDER BY timestamp, id
	`, strings.ToLower(subreddit))
	if err != nil {
		return nil, fmt.Errorf("failed to query mod log: %w", err)
	}
	defer rows.Close()

	var entries []modlog.Entry
	for rows.Next() {
		var e modlog.Entry
		var kind string
		if err := rows.Scan(&e.Subreddit, &e.Author, &e.Mod, &e.Action, &kind,
			&e.Timestamp, &e.Permalink, &e.Title, &e.Body); err != nil {
			return nil, fmt.Errorf("failed to scan mod log entry: %w", err)
		}
		e.Kind = modlog.Kind(kind)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *ModLogStore) Clear(ctx context.Context, subreddit string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM modlog_entries WHERE lower(subreddit) = ?`,
		strings.ToLower(subreddit))
	return err
}

// CountBySubreddit returns the number of stored entries per community.
func (s *ModLogStore) CountBySubreddit() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT lower(subreddit), COUNT(*) FROM modlog_entries GROUP BY lower(subreddit)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var subreddit string
		var count int
		if err := rows.Scan(&subreddit, &count); err != nil {
			return nil, err
		}
		counts[subreddit] = count
	}

	return counts, rows.Err()
}
