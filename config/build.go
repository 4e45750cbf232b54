// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gogama/netkit"
	"github.com/gogama/netkit/mock"
	"github.com/gogama/netkit/timeout"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func parseLevel(level string) (logrus.Level, error) {
	if level == "" {
		return logrus.InfoLevel, nil
	}
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("netkit/config: %w", err)
	}
	return l, nil
}

// Logger returns a logger writing to stderr at the configured level
// and format.
func (s *Settings) Logger() (*logrus.Logger, error) {
	level, err := parseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	if s.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// TimeoutPolicy returns the timeout policy of the settings: the
// per-method timeouts, falling back to the general one.
func (s *Settings) TimeoutPolicy() timeout.Policy {
	fallback := timeout.Fixed(s.Timeout)
	if len(s.Timeouts) == 0 {
		return fallback
	}
	m := make(map[string]time.Duration, len(s.Timeouts))
	for method, d := range s.Timeouts {
		m[strings.ToUpper(method)] = d
	}
	return timeout.ByMethod(m, fallback)
}

// Client returns a client configured by the settings, logging to
// logger.
func (s *Settings) Client(logger logrus.FieldLogger) *netkit.Client {
	return &netkit.Client{
		UserAgent:     s.UserAgent,
		Notifications: s.Notifications,
		GateTimeout:   s.GateTimeout,
		TimeoutPolicy: s.TimeoutPolicy(),
		Logger:        logger,
	}
}

// MockManager returns the mock manager of the settings, logging to
// logger, and a closer releasing its store.
func (s *Settings) MockManager(logger logrus.FieldLogger) (*mock.Manager, io.Closer, error) {
	store, closer, err := s.openStore()
	if err != nil {
		return nil, nil, err
	}
	return &mock.Manager{
		Store:     store,
		Enabled:   s.Mock.Enabled,
		Recording: s.Mock.Recording,
		Logger:    logger,
	}, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (s *Settings) openStore() (mock.Store, io.Closer, error) {
	m := s.Mock
	switch m.Store {
	case "", "memory":
		return mock.NewMemoryStore(), nopCloser{}, nil
	case "dir":
		return mock.NewDirStore(m.Path), nopCloser{}, nil
	case "bolt":
		store, err := mock.OpenBoltStore(m.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "redis":
		opts, err := redis.ParseURL(m.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("netkit/config: failed to parse redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		return mock.NewRedisStore(client, m.Prefix, m.TTL), client, nil
	case "http":
		return &mock.HTTPStore{BaseURL: m.BaseURL}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("netkit/config: unknown mock store %q", m.Store)
	}
}
