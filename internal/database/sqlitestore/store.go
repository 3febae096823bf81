// Package sqlitestore provides SQLite-backed store implementations as an
// alternative to the BoltDB backend. Connections are opened through
// otelsql so every query is traced.
package sqlitestore

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS modlog_entries (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	subreddit TEXT    NOT NULL,
	author    TEXT    NOT NULL,
	mod       TEXT    NOT NULL DEFAULT '',
	action    TEXT    NOT NULL DEFAULT '',
	kind      TEXT    NOT NULL DEFAULT 'other',
	timestamp INTEGER NOT NULL,
	permalink TEXT    NOT NULL DEFAULT '',
	title     TEXT    NOT NULL DEFAULT '',
	body      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_modlog_subreddit_time
	ON modlog_entries (subreddit, timestamp, id);

CREATE TABLE IF NOT EXISTS subreddit_configs (
	name     TEXT PRIMARY KEY,
	document TEXT NOT NULL
);
`

// Open opens (or creates) the SQLite database at path and applies the
// schema. The returned handle is shared by the specialized stores.
func Open(path string) (*sql.DB, error) {
	db, err := otelsql.Open("sqlite", path,
		otelsql.WithAttributes(attribute.String("db.system", "sqlite")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite serializes writes; one connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
