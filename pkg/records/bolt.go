// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package records

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// 🗄️ BoltStore keeps the set in a bbolt database. Keys are names, values
// the time the name was first recorded.
type BoltStore struct {
	path    string
	timeout time.Duration
	now     func() time.Time
}

// NewBoltStore creates a bolt store at path
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{
		path:    filepath.Clean(path),
		timeout: time.Second,
		now:     time.Now,
	}
}

func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) open() (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return nil, errors.Errorf("opening records database: %w", err)
	}
	return db, nil
}

// Ensure creates the database file and its bucket
func (s *BoltStore) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Errorf("creating records directory: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		return errors.Errorf("creating records bucket: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("records database ready")
	return nil
}

// Load reads every key in the bucket in byte-sorted key order. Insertion
// order is not kept.
func (s *BoltStore) Load(ctx context.Context) (*Set, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	set := NewSet()
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			set.Add(string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Errorf("reading records bucket: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("records", set.Len()).Msg("loaded records")
	return set, nil
}

// Save makes the bucket hold exactly the names in set, in one transaction
func (s *BoltStore) Save(ctx context.Context, set *Set) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	stamp := []byte(s.now().UTC().Format(time.RFC3339))
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return err
		}

		var stale [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			if !set.Contains(string(k)) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		for _, name := range set.Names() {
			if b.Get([]byte(name)) != nil {
				continue
			}
			if err := b.Put([]byte(name), stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("writing records bucket: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("records", set.Len()).Msg("saved records")
	return nil
}

// Clear drops and recreates the bucket
func (s *BoltStore) Clear(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketRecords) != nil {
			if err := tx.DeleteBucket(bucketRecords); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketRecords)
		return err
	})
	if err != nil {
		return errors.Errorf("clearing records bucket: %w", err)
	}
	return nil
}
