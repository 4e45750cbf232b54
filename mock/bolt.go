// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltBucket is the bucket a BoltStore keeps its records in.
const BoltBucket = "netkit.mocks"

// A BoltStore keeps records, JSON encoded, in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the bbolt database at path. The
// database is locked while the store is open; Close releases it.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("netkit/mock: failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BoltBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("netkit/mock: failed to create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Load returns the record saved under key.
func (s *BoltStore) Load(_ context.Context, key string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BoltBucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save saves rec under key.
func (s *BoltStore) Save(_ context.Context, key string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).Put([]byte(key), data)
	})
}

// Keys returns the saved keys in byte order.
func (s *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
