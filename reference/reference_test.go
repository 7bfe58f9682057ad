// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCountry(t *testing.T) {
	tests := []struct {
		q    string
		code string
		err  error
	}{
		{q: "US", code: "US"},
		{q: "us", code: "US"},
		{q: " fr ", code: "FR"},
		{q: "Uruguay", code: "UY"},
		{q: "uruguay", code: "UY"},
		{q: "Aland Islands", code: "AX"},
		{q: "cote d'ivoire", code: "CI"},
		{q: "Niger", code: "NE"}, // exact name beats the Nigeria prefix
		{q: "Turkiye", code: "TR"},
		{q: "Germ", code: "DE"},
		{q: "United", err: ErrMultipleMatches},
		{q: "Atlantis", err: ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.q, func(t *testing.T) {
			c, err := FindCountry(tc.q)
			if tc.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.err), "unexpected error %v", err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.code, c.Code)
		})
	}
}

func TestFindCountryEmpty(t *testing.T) {
	_, err := FindCountry("   ")
	assert.Error(t, err)
}

func TestFindState(t *testing.T) {
	s, err := FindState("tx")
	require.NoError(t, err)
	assert.Equal(t, State{Code: "TX", Name: "Texas"}, *s)

	s, err = FindState("district")
	require.NoError(t, err)
	assert.Equal(t, "DC", s.Code)

	_, err = FindState("New")
	assert.ErrorIs(t, err, ErrMultipleMatches)
}

func TestFindReturnsCopy(t *testing.T) {
	c, err := FindCountry("FR")
	require.NoError(t, err)

	c.Name = "changed"

	again, err := FindCountry("FR")
	require.NoError(t, err)
	assert.Equal(t, "France", again.Name)
}

func TestCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}

	require.NoError(t, EachCountry(func(c Country) error {
		assert.Len(t, c.Code, 2, c.Name)
		assert.False(t, seen[c.Code], "duplicated country %s", c.Code)
		seen[c.Code] = true

		return nil
	}))
	assert.True(t, seen[USCode])

	states := map[string]bool{}

	require.NoError(t, EachState(func(s State) error {
		assert.False(t, states[s.Code], "duplicated state %s", s.Code)
		states[s.Code] = true

		return nil
	}))
	assert.Len(t, states, 51)
}

func TestEachStops(t *testing.T) {
	stop := errors.New("stop")
	n := 0

	err := EachCountry(func(Country) error {
		n++
		if n == 3 {
			return stop
		}

		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, n)
}

func TestSortedLists(t *testing.T) {
	cs := Countries()
	require.Len(t, cs, len(countries))
	assert.Equal(t, "Afghanistan", cs[0].Name)
	assert.Equal(t, "Åland Islands", cs[1].Name)

	ss := USStates()
	assert.Equal(t, "Alabama", ss[0].Name)
	assert.Equal(t, "Wyoming", ss[len(ss)-1].Name)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCountryCode("CA"))
	assert.False(t, IsCountryCode("ca"))
	assert.False(t, IsCountryCode("Canada"))
	assert.True(t, IsStateCode("NY"))
	assert.False(t, IsStateCode("ON"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "sao tome and principe", Fold("  São Tomé and Príncipe "))
	assert.Equal(t, "curacao", Fold("Curaçao"))
}
