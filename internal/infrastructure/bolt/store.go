package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// Store wraps an embedded BoltDB file and the buckets the service needs.
type Store struct {
	db *bbolt.DB
}

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string, buckets ...string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for repositories.
func (s *Store) DB() *bbolt.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Size returns the number of keys in the bucket.
func (s *Store) Size(bucket string) (int, error) {
	if s == nil || s.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bolt: bucket %q not found", bucket)
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bbolt.Stats {
	if s == nil || s.db == nil {
		return bbolt.Stats{}
	}
	return s.db.Stats()
}
