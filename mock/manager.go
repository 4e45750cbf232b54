// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// A Store keeps records by key. Stores must be safe for concurrent use
// by multiple goroutines.
type Store interface {
	// Load returns the record saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) (*Record, error)
	// Save saves rec under key, replacing any existing record.
	Save(ctx context.Context, key string, rec *Record) error
}

// A Manager serves and records mock responses from and to a Store. It
// implements netkit.MockManager and netkit.MockRecorder.
//
// The zero value has no store: loading fails with ErrNotFound and
// recording is a no-op.
type Manager struct {
	// Store holds the records.
	Store Store
	// Enabled makes requests with a mock key use the store instead of
	// the network. Requests may override it.
	Enabled bool
	// Recording makes real responses to requests with a mock key be
	// saved to the store.
	Recording bool
	// Logger receives a debug entry per load and save. If nil,
	// logrus.StandardLogger() is used.
	Logger logrus.FieldLogger
}

// MockingEnabled returns m.Enabled.
func (m *Manager) MockingEnabled() bool {
	return m.Enabled
}

// RecordingEnabled returns m.Recording.
func (m *Manager) RecordingEnabled() bool {
	return m.Recording && m.Store != nil
}

// LoadMock loads the record saved under key and returns its body and a
// response replaying it. The URL is only logged.
func (m *Manager) LoadMock(ctx context.Context, key string, u *url.URL) ([]byte, *http.Response, error) {
	if m.Store == nil {
		return nil, nil, ErrNotFound
	}
	rec, err := m.Store.Load(ctx, key)
	if err != nil {
		m.logger().WithError(err).WithField("key", key).Debug("mock not loaded")
		return nil, nil, err
	}
	m.logger().WithFields(logrus.Fields{
		"key":    key,
		"url":    urlString(u),
		"status": rec.StatusCode,
	}).Debug("mock loaded")
	return rec.Body, rec.Response(), nil
}

// RecordMock saves the response received for u under key.
func (m *Manager) RecordMock(ctx context.Context, key string, u *url.URL, body []byte, resp *http.Response) error {
	if m.Store == nil {
		return nil
	}
	rec := NewRecord(u, body, resp)
	if err := m.Store.Save(ctx, key, rec); err != nil {
		return err
	}
	m.logger().WithFields(logrus.Fields{
		"key":    key,
		"url":    rec.URL,
		"status": rec.StatusCode,
	}).Debug("mock recorded")
	return nil
}

func (m *Manager) logger() logrus.FieldLogger {
	if m.Logger == nil {
		return logrus.StandardLogger()
	}
	return m.Logger
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
