// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads netkit settings from a YAML file and NETKIT_
// environment variables, and builds the client and mock manager they
// describe.
//
// Every key can be overridden from the environment by upper-casing it,
// replacing dots with underscores, and adding the NETKIT_ prefix. For
// example NETKIT_MOCK_ENABLED=true overrides mock.enabled.
//
// A settings file looks like this:
//
//	user_agent: myapp/1.2
//	notifications: true
//	gate_timeout: 30s
//	timeout: 10s
//	timeouts:
//	  POST: 1m
//	log_level: debug
//	mock:
//	  enabled: true
//	  store: dir
//	  path: testdata/mocks
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the base name, without extension, of the settings file
// searched for when none is named.
const FileName = "netkit"

// Settings are the loaded settings.
type Settings struct {
	UserAgent     string                   `mapstructure:"user_agent"`
	Notifications bool                     `mapstructure:"notifications"`
	GateTimeout   time.Duration            `mapstructure:"gate_timeout"`
	Timeout       time.Duration            `mapstructure:"timeout"`
	Timeouts      map[string]time.Duration `mapstructure:"timeouts"`
	LogLevel      string                   `mapstructure:"log_level"`
	LogFormat     string                   `mapstructure:"log_format"`
	Mock          MockSettings             `mapstructure:"mock"`
}

// MockSettings configure the mock manager.
type MockSettings struct {
	Enabled   bool `mapstructure:"enabled"`
	Recording bool `mapstructure:"recording"`
	// Store is one of "memory", "dir", "bolt", "redis" and "http".
	Store string `mapstructure:"store"`
	// Path is the fixture directory of a dir store, or the database
	// file of a bolt store.
	Path string `mapstructure:"path"`
	// RedisURL is the server URL of a redis store, for example
	// redis://localhost:6379/0.
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	// BaseURL is the fixture base URL of an http store.
	BaseURL string `mapstructure:"base_url"`
}

var defaults = map[string]interface{}{
	"user_agent":     "",
	"notifications":  false,
	"gate_timeout":   "0s",
	"timeout":        "0s",
	"timeouts":       map[string]interface{}{},
	"log_level":      "info",
	"log_format":     "text",
	"mock.enabled":   false,
	"mock.recording": false,
	"mock.store":     "memory",
	"mock.path":      "",
	"mock.redis_url": "",
	"mock.prefix":    "netkit:mock:",
	"mock.ttl":       "0s",
	"mock.base_url":  "",
}

// Load reads the settings file named file, or if file is empty the
// first netkit.yaml or netkit.yml found in the working directory or in
// $HOME/.netkit, applies the environment overrides and validates the
// result. A missing file is only an error when it is named.
func Load(file string) (*Settings, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if file == "" {
		file = findFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("netkit/config: failed to read %s: %w", file, err)
		}
	}
	v.SetEnvPrefix("NETKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("netkit/config: failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func findFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".netkit"))
	}
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, FileName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	var errs []error
	if _, err := parseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("netkit/config: unknown log format %q", s.LogFormat))
	}
	if s.GateTimeout < 0 || s.Timeout < 0 {
		errs = append(errs, errors.New("netkit/config: negative timeout"))
	}
	switch s.Mock.Store {
	case "", "memory":
	case "dir", "bolt":
		if s.Mock.Path == "" {
			errs = append(errs, fmt.Errorf("netkit/config: mock store %q needs mock.path", s.Mock.Store))
		}
	case "redis":
		if s.Mock.RedisURL == "" {
			errs = append(errs, errors.New(`netkit/config: mock store "redis" needs mock.redis_url`))
		}
	case "http":
		if s.Mock.BaseURL == "" {
			errs = append(errs, errors.New(`netkit/config: mock store "http" needs mock.base_url`))
		}
	default:
		errs = append(errs, fmt.Errorf("netkit/config: unknown mock store %q", s.Mock.Store))
	}
	return errors.Join(errs...)
}
