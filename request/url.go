// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrBadURL is returned by URLBuilder.URL when the builder's components
// do not form an absolute URL.
var ErrBadURL = errors.New("netkit/request: bad URL")

// A URLBuilder assembles a URL from its components. Its zero value has
// no scheme, and URL will fail until Host is set; the request lifecycle
// presets Scheme to "https" on every new request.
//
// Endpoints typically fill in Scheme and Host while the caller supplies
// Path and Query.
type URLBuilder struct {
	// Scheme is the URL scheme, for example "https".
	Scheme string
	// User holds optional username and password information.
	User *url.Userinfo
	// Host is the host name or IP address, without any port.
	Host string
	// Port is the TCP port. Zero means the scheme's default port.
	Port int
	// Path is the URL path. A leading slash is added if missing.
	Path string
	// Query holds the query parameters.
	Query url.Values
	// Fragment is the URL fragment, without the leading '#'.
	Fragment string
}

// SetString replaces every component of the builder with the
// components parsed from s.
func (b *URLBuilder) SetString(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	b.SetURL(u)
	return nil
}

// SetURL replaces every component of the builder with the components
// of u.
func (b *URLBuilder) SetURL(u *url.URL) {
	b.Scheme = u.Scheme
	b.User = u.User
	b.Host = u.Hostname()
	b.Port = 0
	if p := u.Port(); p != "" {
		b.Port, _ = strconv.Atoi(p)
	}
	b.Path = u.Path
	b.Query = u.Query()
	b.Fragment = u.Fragment
}

// AddQuery appends a query parameter, keeping any existing values for
// the same key.
func (b *URLBuilder) AddQuery(key, value string) {
	if b.Query == nil {
		b.Query = make(url.Values)
	}
	b.Query.Add(key, value)
}

// SetQuery sets a query parameter, replacing any existing values for
// the same key.
func (b *URLBuilder) SetQuery(key, value string) {
	if b.Query == nil {
		b.Query = make(url.Values)
	}
	b.Query.Set(key, value)
}

// URL returns the URL described by the builder, or ErrBadURL if the
// builder has no scheme or host, or the port is out of range.
func (b *URLBuilder) URL() (*url.URL, error) {
	if b.Scheme == "" || b.Host == "" || b.Port < 0 || b.Port > 65535 {
		return nil, ErrBadURL
	}
	host := b.Host
	if b.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(b.Port))
	} else if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	path := b.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := &url.URL{
		Scheme:   b.Scheme,
		User:     b.User,
		Host:     removeEmptyPort(host),
		Path:     path,
		Fragment: b.Fragment,
	}
	if len(b.Query) > 0 {
		u.RawQuery = b.Query.Encode()
	}
	return u, nil
}

// String returns the URL as a string, or the empty string if the
// builder does not describe a valid URL.
func (b *URLBuilder) String() string {
	u, err := b.URL()
	if err != nil {
		return ""
	}
	return u.String()
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
