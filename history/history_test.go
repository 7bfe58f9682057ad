// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) Repository {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	if err := repo.CreateSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return repo
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.CreateSchema(context.Background()))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewSearch(t *testing.T) {
	results := []geocode.Result{
		{Name: "Montevideo", Country: "UY", Lat: -34.9058916, Lon: -56.1913095},
		{Name: "Montevideo", Country: "US", State: "Minnesota", Lat: 44.9480, Lon: -95.7170},
	}

	s, err := NewSearch("abc", geocode.Query{City: " Montevideo ", Country: "uy"}, geocode.Success(results))
	require.NoError(t, err)

	assert.Equal(t, geocode.Query{City: "Montevideo", Country: "UY"}, s.Query)
	assert.Equal(t, 2, s.ResultCount)
	require.NotNil(t, s.Top)
	assert.Equal(t, spatial.Point{Lat: -34.9058916, Lng: -56.1913095}, *s.Top)
	assert.Equal(t, s.Top.Key(), s.Cell.String())

	s, err = NewSearch("abc", geocode.Query{City: "Nowhere"}, geocode.Empty())
	require.NoError(t, err)
	assert.Nil(t, s.Top)
	assert.Zero(t, s.ResultCount)
	assert.Equal(t, geocode.OutcomeEmpty, s.Outcome)
}

func TestRecordAndList(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewSearch("s1", geocode.Query{City: "Paris"}, geocode.Success([]geocode.Result{
		{Name: "Paris", Country: "FR", Lat: 48.8588897, Lon: 2.3200410217200766},
	}))
	require.NoError(t, err)

	first.CreatedAt = base

	second, err := NewSearch("", geocode.Query{City: "Austin", State: "TX", Country: "US"}, geocode.Failure(nil))
	require.NoError(t, err)

	second.CreatedAt = base.Add(time.Minute)

	require.NoError(t, repo.Record(ctx, first))
	require.NoError(t, repo.Record(ctx, second))
	require.Error(t, repo.Record(ctx, first), "duplicate id")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, second.ID, got[0].ID)
	assert.Empty(t, got[0].Session)
	assert.Equal(t, geocode.Query{City: "Austin", State: "TX", Country: "US"}, got[0].Query)
	assert.Equal(t, geocode.OutcomeFailure, got[0].Outcome)
	assert.Nil(t, got[0].Top)
	assert.Zero(t, got[0].Cell)

	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "s1", got[1].Session)
	assert.Equal(t, 1, got[1].ResultCount)
	require.NotNil(t, got[1].Top)
	assert.InDelta(t, 48.8588897, got[1].Top.Lat, 1e-5)
	assert.InDelta(t, 2.3200410, got[1].Top.Lng, 1e-5)
	assert.Equal(t, first.Cell, got[1].Cell)
	assert.True(t, base.Equal(got[1].CreatedAt))

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordNil(t *testing.T) {
	repo := setupTestDB(t)

	assert.Error(t, repo.Record(context.Background(), nil))
}
