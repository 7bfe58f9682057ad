// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"context"
	"sync"

	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/metrics"
)

// Searcher performs one geocoding search.
type Searcher interface {
	Search(ctx context.Context, q geocode.Query) geocode.Outcome
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q geocode.Query) geocode.Outcome

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, q geocode.Query) geocode.Outcome {
	return f(ctx, q)
}

// Manager serializes access to the State of one session.
type Manager struct {
	mu    sync.Mutex
	state State
}

// NewManager returns a manager holding the initial state.
func NewManager() *Manager {
	return &Manager{}
}

// Dispatch applies msgs in order and returns the resulting state.
func (m *Manager) Dispatch(msgs ...Msg) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range msgs {
		m.state = Update(m.state, msg)
	}

	return m.state
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Search runs a search for the current input. The lock is released while
// the searcher runs, so a later search may overtake this one; applied is
// false when the outcome arrived after a newer search was issued and was
// dropped.
func (m *Manager) Search(ctx context.Context, searcher Searcher) (s State, applied bool) {
	m.mu.Lock()
	m.state = Update(m.state, SearchIssued{})
	seq := m.state.Seq
	q := m.state.Query()
	m.mu.Unlock()

	outcome := searcher.Search(ctx, q)

	m.mu.Lock()
	defer m.mu.Unlock()

	applied = m.state.Applies(seq)
	m.state = Update(m.state, SearchResolved{Seq: seq, Outcome: outcome})

	if applied {
		metrics.SearchOutcomes.WithLabelValues(outcome.Kind.String()).Inc()
	} else {
		metrics.StaleResponses.Inc()
	}

	return m.state, applied
}
