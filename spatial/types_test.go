// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointScan(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Point
		wantErr bool
	}{
		{name: "nil", value: nil, want: Point{}},
		{name: "string", value: "POINT(2.352200 48.856600)", want: Point{Lat: 48.8566, Lng: 2.3522}},
		{name: "bytes with space", value: []byte("POINT (-56.15 -34.88)"), want: Point{Lat: -34.88, Lng: -56.15}},
		{name: "garbage", value: "LINESTRING(0 0, 1 1)", wantErr: true},
		{name: "unsupported", value: 42, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p Point

			err := p.Scan(tc.value)
			if tc.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tc.want.Lat, p.Lat, 1e-6)
			assert.InDelta(t, tc.want.Lng, p.Lng, 1e-6)
		})
	}
}

func TestPointValueRoundTrip(t *testing.T) {
	in := Point{Lat: 45.5017, Lng: -73.5673}

	v, err := in.Value()
	require.NoError(t, err)

	var out Point
	require.NoError(t, out.Scan(v))
	assert.InDelta(t, in.Lat, out.Lat, 1e-6)
	assert.InDelta(t, in.Lng, out.Lng, 1e-6)
}

func TestPointKey(t *testing.T) {
	paris := Point{Lat: 48.8588897, Lng: 2.3200410}
	nearby := Point{Lat: 48.8588898, Lng: 2.3200411}
	parisTexas := Point{Lat: 33.6617962, Lng: -95.5555130}

	assert.Equal(t, paris.Key(), nearby.Key())
	assert.NotEqual(t, paris.Key(), parisTexas.Key())

	cell, err := paris.Cell(KeyResolution)
	require.NoError(t, err)
	assert.Equal(t, KeyResolution, cell.Resolution())
}

func TestPointKeyOutOfRange(t *testing.T) {
	p := Point{Lat: 123, Lng: 0}

	assert.False(t, p.Valid())
	assert.Equal(t, "123.00000,0.00000", p.Key())

	_, err := p.Cell(KeyResolution)
	assert.Error(t, err)
}
