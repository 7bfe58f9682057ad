// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/geoform/form"
	"github.com/jcodagnone/geoform/metrics"
)

type session struct {
	manager  *form.Manager
	lastSeen time.Time
}

// SessionStore keeps one form manager per browser session in memory.
// Sessions idle for longer than the TTL are dropped.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*session
}

// NewSessionStore creates an empty store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the manager for id, creating a new session when id is unknown,
// malformed or expired. The returned id is the one to hand back to the
// client.
func (s *SessionStore) Get(id string) (string, *form.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.sessions[id]; ok && now.Sub(sess.lastSeen) <= s.ttl {
			sess.lastSeen = now

			return id, sess.manager
		}
	}

	id = uuid.NewString()
	sess := &session{manager: form.NewManager(), lastSeen: now}
	s.sessions[id] = sess

	metrics.ActiveSessions.Set(float64(len(s.sessions)))

	return id, sess.manager
}

// Lookup returns the manager of a live session without creating one.
func (s *SessionStore) Lookup(id string) (*form.Manager, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	sess, ok := s.sessions[id]
	if !ok || now.Sub(sess.lastSeen) > s.ttl {
		return nil, false
	}

	sess.lastSeen = now

	return sess.manager, true
}

// Evict removes expired sessions and returns how many were removed.
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0

	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}

	metrics.ActiveSessions.Set(float64(len(s.sessions)))

	return n
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Run evicts expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}
