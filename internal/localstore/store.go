// Package localstore is the device-local persistence adapter. It wraps a
// bbolt file holding two independent aggregates, collections and
// notifications, each stored as one full JSON sequence under a single
// key. Reads and writes are whole-document: callers read the entire
// aggregate, mutate in memory, and write it back. Last write wins;
// nothing coordinates writers across processes.
package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/minbarcms/minbar/internal/models"
)

const (
	bucketCollections   = "collections"
	bucketNotifications = "notifications"

	// aggregateKey is the single key each bucket stores its sequence under.
	aggregateKey = "all"
)

// defaultCollections seeds the collections aggregate on the first-ever
// read. A convenience for new installs, not a data contract: once any
// write has happened, an empty aggregate stays empty.
func defaultCollections() []models.Collection {
	return []models.Collection{
		{ID: 1, Name: "Sahih Bukhari", Description: "Authentic Hadith Collection", EntryIDs: []string{"h1", "h2"}},
		{ID: 2, Name: "Favorite Ayat", Description: "Bookmarked Quran Verses", EntryIDs: []string{"q1"}},
	}
}

// Store is the bbolt-backed local store.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the store file and ensures both buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketCollections)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketNotifications)); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init local store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadCollections returns the full collections aggregate. On the
// first-ever read (no key present) it seeds and persists the defaults.
func (s *Store) ReadCollections() ([]models.Collection, error) {
	var raw []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		raw = tx.Bucket([]byte(bucketCollections)).Get([]byte(aggregateKey))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read collections: %w", err)
	}

	if raw == nil {
		seeded := defaultCollections()
		if err := s.WriteCollections(seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}

	var cols []models.Collection
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return cols, nil
}

// WriteCollections replaces the full collections aggregate.
func (s *Store) WriteCollections(cols []models.Collection) error {
	return s.writeAggregate(bucketCollections, cols)
}

// ReadNotifications returns the full notification feed, newest first.
// An absent key is an empty feed.
func (s *Store) ReadNotifications() ([]models.Notification, error) {
	var raw []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		raw = tx.Bucket([]byte(bucketNotifications)).Get([]byte(aggregateKey))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}

	if raw == nil {
		return nil, nil
	}

	var ns []models.Notification
	if err := json.Unmarshal(raw, &ns); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return ns, nil
}

// WriteNotifications replaces the full notification feed.
func (s *Store) WriteNotifications(ns []models.Notification) error {
	return s.writeAggregate(bucketNotifications, ns)
}

func (s *Store) writeAggregate(bucket string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(aggregateKey), data)
	}); err != nil {
		return fmt.Errorf("write %s: %w", bucket, err)
	}
	return nil
}
