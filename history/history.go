// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package history records applied searches in DuckDB.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/spatial"
	"github.com/uber/h3-go/v4"
)

// Search is one recorded search.
type Search struct {
	ID          uuid.UUID           `json:"id"`
	Session     string              `json:"session,omitempty"`
	Query       geocode.Query       `json:"query"`
	Outcome     geocode.OutcomeKind `json:"outcome"`
	ResultCount int                 `json:"result_count"`
	// Top is the first result, nil unless the search succeeded.
	Top       *spatial.Point `json:"top,omitempty"`
	Cell      h3.Cell        `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewSearch builds the record for an applied outcome.
func NewSearch(session string, q geocode.Query, outcome geocode.Outcome) (*Search, error) {
	s := &Search{
		ID:        uuid.New(),
		Session:   session,
		Query:     q.Normalize(),
		Outcome:   outcome.Kind,
		CreatedAt: time.Now().UTC(),
	}

	if outcome.Kind == geocode.OutcomeSuccess && len(outcome.Results) > 0 {
		p := outcome.Results[0].Point()

		cell, err := p.Cell(spatial.KeyResolution)
		if err != nil {
			return nil, fmt.Errorf("computing h3 cell: %w", err)
		}

		s.ResultCount = len(outcome.Results)
		s.Top = &p
		s.Cell = cell
	}

	return s, nil
}

// Repository stores searches.
type Repository interface {
	// CreateSchema creates the searches table
	CreateSchema(ctx context.Context) error

	// Record saves one search
	Record(ctx context.Context, s *Search) error

	// List returns the most recent searches first
	List(ctx context.Context, limit int) ([]*Search, error)

	// Count returns the number of recorded searches
	Count(ctx context.Context) (int, error)
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a repository on top of an open DuckDB handle.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) CreateSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS searches (
			id VARCHAR PRIMARY KEY,
			session VARCHAR,
			city VARCHAR NOT NULL,
			state VARCHAR,
			country VARCHAR,
			outcome VARCHAR NOT NULL,
			result_count INTEGER NOT NULL DEFAULT 0,
			top_point VARCHAR,
			h3_cell BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating searches table: %w", err)
	}

	return nil
}

func (r *sqlRepository) Record(ctx context.Context, s *Search) error {
	if s == nil {
		return errors.New("search can't be nil")
	}

	var (
		top  sql.NullString
		cell sql.NullInt64
	)

	if s.Top != nil {
		top = sql.NullString{String: s.Top.String(), Valid: true}
		cell = sql.NullInt64{Int64: int64(s.Cell), Valid: s.Cell != 0}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO searches(id, session, city, state, country, outcome, result_count, top_point, h3_cell, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID.String(),
		nullString(s.Session),
		s.Query.City,
		nullString(s.Query.State),
		nullString(s.Query.Country),
		s.Outcome.String(),
		s.ResultCount,
		top,
		cell,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording search %s: %w", s.ID, err)
	}

	return nil
}

func (r *sqlRepository) List(ctx context.Context, limit int) ([]*Search, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session, city, state, country, outcome, result_count, top_point, h3_cell, created_at
		FROM searches
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var out []*Search

	for rows.Next() {
		var (
			id                      string
			session, state, country sql.NullString
			outcome                 string
			top                     sql.Null[spatial.Point]
			cell                    sql.NullInt64
			s                       Search
		)

		if err := rows.Scan(&id, &session, &s.Query.City, &state, &country, &outcome,
			&s.ResultCount, &top, &cell, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}

		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing search id %q: %w", id, err)
		}

		if err := s.Outcome.UnmarshalText([]byte(outcome)); err != nil {
			return nil, fmt.Errorf("search %s: %w", id, err)
		}

		s.Session = session.String
		s.Query.State = state.String
		s.Query.Country = country.String

		if top.Valid {
			p := top.V
			s.Top = &p
		}

		if cell.Valid {
			s.Cell = h3.Cell(cell.Int64)
		}

		out = append(out, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating searches: %w", err)
	}

	return out, nil
}

func (r *sqlRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM searches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting searches: %w", err)
	}

	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
