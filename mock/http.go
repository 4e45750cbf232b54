// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gogama/netkit"
)

// An HTTPStore reads fixture files from a web server, for example a
// shared drive serving a directory of JSON files. The record for key is
// the response to a GET of BaseURL followed by key. It is read-only.
type HTTPStore struct {
	// BaseURL is prepended to every key.
	BaseURL string
	// Doer fetches the fixtures. If nil, http.DefaultClient is used.
	Doer netkit.HTTPDoer
}

// Load fetches the fixture for key. A 404 response means ErrNotFound;
// any other response is returned as the record.
func (s *HTTPStore) Load(ctx context.Context, key string) (*Record, error) {
	u := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(key, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	doer := s.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Record{
		URL:        u,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		SavedAt:    time.Now().UTC(),
	}, nil
}

// Save returns ErrReadOnly.
func (s *HTTPStore) Save(context.Context, string, *Record) error {
	return ErrReadOnly
}
