// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"sort"
	"sync"
)

// A MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Load returns the record saved under key.
func (s *MemoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Save saves a copy of rec under key.
func (s *MemoryStore) Save(_ context.Context, key string, rec *Record) error {
	cp := *rec
	cp.Header = rec.Header.Clone()
	cp.Body = append([]byte(nil), rec.Body...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = cp
	return nil
}

// Keys returns the saved keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
