// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"testing"
	"time"

	"github.com/jcodagnone/geoform/form"
	"github.com/stretchr/testify/assert"
)

func TestSessionStore(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store := NewSessionStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	id, m := store.Get("")
	assert.NotEmpty(t, id)

	m.Dispatch(form.CityChanged{City: "Lima"})

	again, m2 := store.Get(id)
	assert.Equal(t, id, again)
	assert.Same(t, m, m2)

	forged, _ := store.Get("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", forged)
	assert.Equal(t, 2, store.Len())

	now = now.Add(9 * time.Minute)
	_, _ = store.Get(id)

	now = now.Add(9 * time.Minute)
	assert.Equal(t, 1, store.Evict(), "only the untouched session expired")
	assert.Equal(t, 1, store.Len())

	now = now.Add(11 * time.Minute)

	fresh, m3 := store.Get(id)
	assert.NotEqual(t, id, fresh)
	assert.Empty(t, m3.Snapshot().City)
}

func TestSessionStoreLookup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store := NewSessionStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	for _, id := range []string{"", "not-a-uuid", "6f1c2a7e-0000-4000-8000-000000000000"} {
		m, ok := store.Lookup(id)
		assert.False(t, ok, id)
		assert.Nil(t, m, id)
	}

	assert.Zero(t, store.Len())

	id, m := store.Get("")

	now = now.Add(9 * time.Minute)

	found, ok := store.Lookup(id)
	assert.True(t, ok)
	assert.Same(t, m, found)

	now = now.Add(9 * time.Minute)

	_, ok = store.Lookup(id)
	assert.True(t, ok, "lookup refreshed the session")

	now = now.Add(11 * time.Minute)

	_, ok = store.Lookup(id)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(), "lookup leaves eviction to Evict")
}
