// Package skipdb persists the fingerprints a runner needs to decide
// whether a task's work can be skipped because the objects recorded for it
// (its targets, as flowdag uses it) have not changed since the last
// successful run.
package skipdb

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("fingerprints")

// Record is what gets persisted for one task: the ordered dependency names
// alongside the Compare() output captured for each, from its last
// successful run.
type Record struct {
	DepKeys     []string   `json:"dep_keys"`
	DepCompares [][]string `json:"dep_compares"`
}

// Store is a bbolt-backed fingerprint store, one bucket keyed by task
// name holding its last-successful Record as JSON.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path for
// fingerprint persistence.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("skipdb: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("skipdb: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the last persisted Record for taskName. ok is false if no
// record has ever been saved for it.
func (s *Store) Load(taskName string) (rec Record, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(taskName))
		if raw == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("skipdb: load %s: %w", taskName, err)
	}
	return rec, ok, nil
}

// Save persists rec as the latest fingerprint for taskName, overwriting
// whatever was there before.
func (s *Store) Save(taskName string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("skipdb: marshal %s: %w", taskName, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(taskName), raw)
	})
	if err != nil {
		return fmt.Errorf("skipdb: save %s: %w", taskName, err)
	}
	return nil
}

// Delete removes any persisted fingerprint for taskName, forcing it to run
// unconditionally on the next check.
func (s *Store) Delete(taskName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(taskName))
	})
}
