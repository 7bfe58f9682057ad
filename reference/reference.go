// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package reference provides the static lookup sets used to populate the
// country and U.S. state selection controls.
package reference

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// USCode is the only country for which a state may be selected.
const USCode = "US"

var (
	// ErrNotFound is returned when no entry matches a query.
	ErrNotFound = errors.New("not found")
	// ErrMultipleMatches is returned when a name prefix is ambiguous.
	ErrMultipleMatches = errors.New("multiple matches")
)

// Country is an ISO 3166-1 alpha-2 entry.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// State is a U.S. state (or DC) entry.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Countries returns every country sorted by display name.
func Countries() []Country {
	return sortedByName(countries, func(c Country) string { return c.Name })
}

// USStates returns every U.S. state sorted by display name.
func USStates() []State {
	return sortedByName(usStates, func(s State) string { return s.Name })
}

// FindCountry locates a country by code or by (accent-insensitive) name prefix.
func FindCountry(q string) (*Country, error) {
	return find(countries, q, func(c Country) string { return c.Code }, func(c Country) string { return c.Name })
}

// FindState locates a U.S. state by code or by name prefix.
func FindState(q string) (*State, error) {
	return find(usStates, q, func(s State) string { return s.Code }, func(s State) string { return s.Name })
}

// IsCountryCode reports whether code is a known country code. It is exact:
// lower case codes or names don't qualify.
func IsCountryCode(code string) bool {
	return slices.ContainsFunc(countries, func(c Country) bool { return c.Code == code })
}

// IsStateCode reports whether code is a known U.S. state code.
func IsStateCode(code string) bool {
	return slices.ContainsFunc(usStates, func(s State) bool { return s.Code == code })
}

// EachCountry applies callback to each country in code order.
// It stops iteration and returns the error if the callback returns an error.
func EachCountry(callback func(Country) error) error {
	for i := range countries {
		if err := callback(countries[i]); err != nil {
			return err
		}
	}

	return nil
}

// EachState applies callback to each U.S. state.
func EachState(callback func(State) error) error {
	for i := range usStates {
		if err := callback(usStates[i]); err != nil {
			return err
		}
	}

	return nil
}

// Fold normalizes a string by removing accents, lowercasing, and trimming spaces.
func Fold(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

func sortedByName[T any](entries []T, name func(T) string) []T {
	ret := slices.Clone(entries)
	slices.SortStableFunc(ret, func(a, b T) int {
		return strings.Compare(Fold(name(a)), Fold(name(b)))
	})

	return ret
}

// find resolves q in order: exact code, exact folded name, unique folded
// name prefix.
func find[T any](entries []T, q string, code, name func(T) string) (*T, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.New("empty search query")
	}

	for i := range entries {
		if strings.EqualFold(code(entries[i]), q) {
			found := entries[i]

			return &found, nil
		}
	}

	folded := Fold(q)

	for i := range entries {
		if Fold(name(entries[i])) == folded {
			exact := entries[i]

			return &exact, nil
		}
	}

	var found *T

	for i := range entries {
		if !strings.HasPrefix(Fold(name(entries[i])), folded) {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("%w for %q: %q, %q", ErrMultipleMatches, q, name(*found), name(entries[i]))
		}

		// copy so callers can't alias the table
		entry := entries[i]
		found = &entry
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, q)
	}

	return found, nil
}
