// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"sort"
	"sync"
)

// A SessionRegistry caches one session per endpoint identifier. Its
// zero value is an empty registry ready to use.
//
// Clients share a process-wide registry by default. A registry with a
// shorter lifetime, for example one per screen of an application, can
// be set as a request's Scope; closing it invalidates its sessions.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

var defaultSessions = NewSessionRegistry()

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

// GetOrCreate returns the session cached under id, calling create to
// make and cache one if there is none. The lookup and the creation are
// one critical section, so concurrent callers with the same id all get
// the same session. A nil session returned by create is not cached.
func (r *SessionRegistry) GetOrCreate(id string, create func() (Session, error)) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	s, err := create()
	if err != nil || s == nil {
		return nil, err
	}
	if r.sessions == nil {
		r.sessions = make(map[string]Session)
	}
	r.sessions[id] = s
	return s, nil
}

// Get returns the session cached under id, if any.
func (r *SessionRegistry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session cached under id and returns it, or nil if
// there was none. The session is not invalidated.
func (r *SessionRegistry) Remove(id string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	delete(r.sessions, id)
	return s
}

// Len returns the number of cached sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close empties the registry and invalidates every removed session that
// implements Invalidator.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = nil
	r.mu.Unlock()
	for _, s := range sessions {
		if inv, ok := s.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}

// A BackgroundRegistry records which endpoint owns each background
// session identifier, so that an application relaunched to finish
// background transfers can find the endpoint to hand them to. Its zero
// value is an empty registry ready to use.
type BackgroundRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

var defaultBackground = &BackgroundRegistry{}

// Register records ep as the owner of the background identifier id.
func (b *BackgroundRegistry) Register(id string, ep Endpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.endpoints == nil {
		b.endpoints = make(map[string]Endpoint)
	}
	b.endpoints[id] = ep
}

// Lookup returns the endpoint registered for id.
func (b *BackgroundRegistry) Lookup(id string) (Endpoint, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ep, ok := b.endpoints[id]
	return ep, ok
}

// Unregister forgets id.
func (b *BackgroundRegistry) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.endpoints, id)
}

// IDs returns the registered identifiers in sorted order.
func (b *BackgroundRegistry) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.endpoints))
	for id := range b.endpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
