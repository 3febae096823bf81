package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"modsentry/internal/modlog"

	bolt "go.etcd.io/bbolt"
)

// ModLogStore provides persistent storage for moderation-log entries,
// partitioned per community.
type ModLogStore struct {
	db *bolt.DB
}

// Ensure ModLogStore implements the interface at compile time.
var _ modlog.Store = (*ModLogStore)(nil)

// partitionPrefix is the key prefix for one community's entries.
func partitionPrefix(subreddit string) []byte {
	return []byte(strings.ToLower(subreddit) + ":")
}

// entryKey builds a chronologically ordered, unique key for an entry.
// Format: subreddit:timestamp:seq
func entryKey(subreddit string, timestamp int64, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s:%013d:%08d", strings.ToLower(subreddit), timestamp, seq))
}

// InsertMany stores a batch of entries under the community's partition.
func (s *ModLogStore) InsertMany(ctx context.Context, subreddit string, entries []modlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketModLogEntries)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketModLogEntries)
		}

		for _, entry := range entries {
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to marshal mod log entry: %w", err)
			}

			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("failed to allocate sequence: %w", err)
			}

			if err := bucket.Put(entryKey(subreddit, entry.Timestamp, seq), data); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetEntries returns every stored entry for the given community in key
// (chronological) order.
func (s *ModLogStore) GetEntries(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
	var entries []modlog.Entry

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketModLogEntries)
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		prefix := partitionPrefix(subreddit)

		for k, v := cursor.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = cursor.Next() {
			var entry modlog.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue // Skip malformed entries
			}
			entries = append(entries, entry)
		}

		return nil
	})

	return entries, err
}

// Clear removes all entries for the given community.
func (s *ModLogStore) Clear(ctx context.Context, subreddit string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketModLogEntries)
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		prefix := partitionPrefix(subreddit)

		for k, _ := cursor.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = cursor.Next() {
			if err := cursor.Delete(); err != nil {
				return err
			}
		}

		return nil
	})
}

// CountBySubreddit returns the number of stored entries per community.
// Used by the metrics collector.
func (s *ModLogStore) CountBySubreddit() (map[string]int, error) {
	counts := make(map[string]int)

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketModLogEntries)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			key := string(k)
			if idx := strings.IndexByte(key, ':'); idx > 0 {
				counts[key[:idx]]++
			}
			return nil
		})
	})

	return counts, err
}

// hasPrefix checks if a byte slice has a given prefix.
func hasPrefix(s, prefix []byte) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if s[i] != b {
			return false
		}
	}
	return true
}
