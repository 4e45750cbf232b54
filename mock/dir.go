// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// A DirStore keeps each record in a YAML fixture file of its own, so
// fixtures can be reviewed and edited by hand. File names are derived
// from a hash of the key.
//
// Bodies which are valid UTF-8 are stored as text; others are stored
// base64 encoded.
type DirStore struct {
	// Dir is the fixture directory. It is created on first save.
	Dir string
}

// NewDirStore returns a DirStore over dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir}
}

type fixture struct {
	Key      string              `yaml:"key"`
	URL      string              `yaml:"url,omitempty"`
	Status   int                 `yaml:"status"`
	Header   map[string][]string `yaml:"header,omitempty"`
	Encoding string              `yaml:"encoding,omitempty"`
	Body     string              `yaml:"body"`
	SavedAt  time.Time           `yaml:"saved_at"`
}

const base64Encoding = "base64"

// Path returns the name of the fixture file for key.
func (s *DirStore) Path(key string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%016x.yaml", xxhash.Sum64String(key)))
}

// Load reads the fixture for key.
func (s *DirStore) Load(_ context.Context, key string) (*Record, error) {
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	var f fixture
	if err = yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("netkit/mock: fixture for %q: %w", key, err)
	}
	if f.Key != key {
		return nil, ErrNotFound
	}
	rec := &Record{
		URL:        f.URL,
		StatusCode: f.Status,
		SavedAt:    f.SavedAt,
	}
	if len(f.Header) > 0 {
		rec.Header = make(http.Header, len(f.Header))
		for k, vs := range f.Header {
			rec.Header[http.CanonicalHeaderKey(k)] = vs
		}
	}
	switch f.Encoding {
	case "":
		rec.Body = []byte(f.Body)
	case base64Encoding:
		if rec.Body, err = base64.StdEncoding.DecodeString(f.Body); err != nil {
			return nil, fmt.Errorf("netkit/mock: fixture for %q: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("netkit/mock: fixture for %q: unknown body encoding %q", key, f.Encoding)
	}
	return rec, nil
}

// Save writes the fixture for key. The file is replaced atomically.
func (s *DirStore) Save(_ context.Context, key string, rec *Record) error {
	f := fixture{
		Key:     key,
		URL:     rec.URL,
		Status:  rec.StatusCode,
		Header:  rec.Header,
		Body:    string(rec.Body),
		SavedAt: rec.SavedAt,
	}
	if !utf8.Valid(rec.Body) {
		f.Encoding = base64Encoding
		f.Body = base64.StdEncoding.EncodeToString(rec.Body)
	}
	b, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".fixture-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = os.Rename(tmp.Name(), s.Path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
