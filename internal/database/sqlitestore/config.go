package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"modsentry/internal/subconfig"
)

// ConfigStore implements subconfig.Store using SQLite. Override documents
// are stored as JSON so the loose shapes older documents carry survive
// round-trips.
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a ConfigStore backed by the given database.
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Ensure ConfigStore implements the interface at compile time.
var _ subconfig.Store = (*ConfigStore)(nil)

// PutOverride stores an override document keyed by its lowercase name.
func (s *ConfigStore) PutOverride(ctx context.Context, override subconfig.Override) error {
	data, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to marshal config override: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subreddit_configs (name, document)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document
	`, strings.ToLower(override.Name), string(data))
	if err != nil {
		return fmt.Errorf("failed to store config override: %w", err)
	}
	return nil
}

// FindOverride returns the first stored document whose name contains the
// identifier, case-insensitively. Same substring-tolerant semantics as the
// BoltDB backend; see subconfig.Resolver.
func (s *ConfigStore) FindOverride(ctx context.Context, subreddit string) (*subconfig.Override, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM subreddit_configs
		WHERE instr(lower(name), ?) > 0
		ORDER BY name
		LIMIT 1
	`, strings.ToLower(subreddit)).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query config override: %w", err)
	}

	var override subconfig.Override
	if err := json.Unmarshal([]byte(document), &override); err != nil {
		return nil, fmt.Errorf("failed to parse config override: %w", err)
	}

	return &override, nil
}

// DeleteOverride removes a stored document by exact (lowercased) name.
func (s *ConfigStore) DeleteOverride(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subreddit_configs WHERE name = ?`,
		strings.ToLower(name))
	return err
}
