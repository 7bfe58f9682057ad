// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate type shared by the geocoder, the
// renderer and the history store.
package spatial

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/uber/h3-go/v4"
)

// KeyResolution is the H3 resolution used to derive stable place keys.
// Cells at this resolution are roughly 0.1 km², which is well below the
// distance between two distinct geocoding matches with the same name.
const KeyResolution = 9

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		p.Lat, p.Lng = 0, 0

		return nil
	case []byte:
		return p.parse(string(v))
	case string:
		return p.parse(v)
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

func (p *Point) parse(s string) error {
	// DuckDB's ST_AsText uses a space after POINT, String() doesn't.
	if _, err := fmt.Sscanf(s, "POINT(%f %f)", &p.Lng, &p.Lat); err == nil {
		return nil
	}

	if _, err := fmt.Sscanf(s, "POINT (%f %f)", &p.Lng, &p.Lat); err != nil {
		return fmt.Errorf("spatial: parsing %q: %w", s, err)
	}

	return nil
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("spatial: point out of range: %s", p)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// Key returns a short identifier for the area around the point. Points that
// can't be indexed fall back to their formatted coordinates.
func (p Point) Key() string {
	cell, err := p.Cell(KeyResolution)
	if err != nil {
		return strconv.FormatFloat(p.Lat, 'f', 5, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 5, 64)
	}

	return cell.String()
}
