package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"modsentry/internal/subconfig"

	bolt "go.etcd.io/bbolt"
)

// ConfigStore provides persistent storage for per-community configuration
// override documents.
type ConfigStore struct {
	db *bolt.DB
}

// Ensure ConfigStore implements the interface at compile time.
var _ subconfig.Store = (*ConfigStore)(nil)

// PutOverride stores an override document keyed by its lowercase name.
func (s *ConfigStore) PutOverride(ctx context.Context, override subconfig.Override) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSubredditConfigs)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketSubredditConfigs)
		}

		data, err := json.Marshal(override)
		if err != nil {
			return fmt.Errorf("failed to marshal config override: %w", err)
		}

		return bucket.Put([]byte(strings.ToLower(override.Name)), data)
	})
}

// FindOverride returns the first stored document whose name field matches
// a case-insensitive pattern derived from the identifier. The match is
// substring-tolerant rather than strict equality, so "foo" also matches a
// document named "foobar". That looseness is preserved deliberately; see
// subconfig.Resolver.
func (s *ConfigStore) FindOverride(ctx context.Context, subreddit string) (*subconfig.Override, error) {
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(subreddit))
	if err != nil {
		return nil, fmt.Errorf("failed to build config match pattern: %w", err)
	}

	var found *subconfig.Override

	err = s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSubredditConfigs)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			if found != nil {
				return nil
			}

			var override subconfig.Override
			if err := json.Unmarshal(v, &override); err != nil {
				return nil // Skip malformed documents
			}

			if pattern.MatchString(override.Name) {
				found = &override
			}
			return nil
		})
	})

	return found, err
}

// DeleteOverride removes a stored document by exact (lowercased) name.
func (s *ConfigStore) DeleteOverride(ctx context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSubredditConfigs)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(strings.ToLower(name)))
	})
}
