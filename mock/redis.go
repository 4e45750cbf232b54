// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// A RedisStore keeps records, JSON encoded, in Redis, so that a fixture
// set can be shared by several processes.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store using client. Keys are stored under
// prefix followed by the mock key. Records expire after ttl, or never
// if ttl is zero.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("netkit/mock: nil redis client")
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Load returns the record saved under key.
func (s *RedisStore) Load(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err = json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save saves rec under key.
func (s *RedisStore) Save(ctx context.Context, key string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}
