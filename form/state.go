// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package form holds the search form state of one session and the pure
// transition function that drives it.
package form

import (
	"maps"
	"strconv"
	"strings"

	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/reference"
)

// RowKey identifies a result row across result sets. Two rows share a key
// only when they describe the same place.
type RowKey string

// State is the whole form: user input, the last applied outcome and which
// rows have their local names expanded. It is a value; Update returns a new
// one and never mutates the maps of its input.
type State struct {
	City            string
	Country         string
	USState         string
	StateSelectable bool

	Outcome  geocode.Outcome
	Expanded map[RowKey]bool

	// Seq is the sequence number of the latest issued search.
	Seq     uint64
	Pending bool
}

// Msg is an input to Update.
type Msg interface {
	isMsg()
}

// CityChanged stores the raw city text.
type CityChanged struct{ City string }

// CountryChanged selects a country. An empty or unknown code means no
// selection.
type CountryChanged struct{ Code string }

// StateChanged selects a U.S. state. Ignored while the state is not
// selectable.
type StateChanged struct{ Code string }

// ExpansionToggled flips the local-names panel of one result row.
type ExpansionToggled struct{ Row int }

// SearchIssued marks the start of a search and allocates its sequence number.
type SearchIssued struct{}

// SearchResolved delivers the outcome of the search numbered Seq.
type SearchResolved struct {
	Seq     uint64
	Outcome geocode.Outcome
}

func (CityChanged) isMsg()      {}
func (CountryChanged) isMsg()   {}
func (StateChanged) isMsg()     {}
func (ExpansionToggled) isMsg() {}
func (SearchIssued) isMsg()     {}
func (SearchResolved) isMsg()   {}

// Update applies msg to s and returns the resulting state.
func Update(s State, msg Msg) State {
	switch m := msg.(type) {
	case CityChanged:
		s.City = m.City
	case CountryChanged:
		s = setCountry(s, m.Code)
	case StateChanged:
		if !s.StateSelectable {
			return s
		}

		code := normalizeCode(m.Code)
		if !reference.IsStateCode(code) {
			code = ""
		}

		s.USState = code
	case ExpansionToggled:
		s = toggle(s, m.Row)
	case SearchIssued:
		s.Seq++
		s.Pending = true
	case SearchResolved:
		if m.Seq != s.Seq {
			return s
		}

		s.Outcome = m.Outcome
		s.Pending = false
		s.Expanded = prune(s.Expanded, RowKeys(s.Results()))
	}

	return s
}

// Applies reports whether a resolution numbered seq would be applied to s.
func (s State) Applies(seq uint64) bool {
	return seq == s.Seq
}

// Results returns the rows of a successful outcome, or nil.
func (s State) Results() []geocode.Result {
	if s.Outcome.Kind != geocode.OutcomeSuccess {
		return nil
	}

	return s.Outcome.Results
}

// IsExpanded reports whether the local names of row i are shown.
func (s State) IsExpanded(i int) bool {
	keys := RowKeys(s.Results())
	if i < 0 || i >= len(keys) {
		return false
	}

	return s.Expanded[keys[i]]
}

// Query assembles the geocoding input. The state goes out only while it is
// selectable.
func (s State) Query() geocode.Query {
	q := geocode.Query{City: s.City, Country: s.Country}
	if s.StateSelectable {
		q.State = s.USState
	}

	return q
}

func setCountry(s State, code string) State {
	code = normalizeCode(code)
	if !reference.IsCountryCode(code) {
		code = ""
	}

	s.Country = code
	s.StateSelectable = code == reference.USCode

	if !s.StateSelectable {
		s.USState = ""
	}

	return s
}

func toggle(s State, row int) State {
	keys := RowKeys(s.Results())
	if row < 0 || row >= len(keys) {
		return s
	}

	expanded := maps.Clone(s.Expanded)
	if expanded == nil {
		expanded = make(map[RowKey]bool, 1)
	}

	k := keys[row]
	if expanded[k] {
		delete(expanded, k)
	} else {
		expanded[k] = true
	}

	s.Expanded = expanded

	return s
}

func prune(expanded map[RowKey]bool, keys []RowKey) map[RowKey]bool {
	if len(expanded) == 0 {
		return nil
	}

	out := make(map[RowKey]bool)

	for _, k := range keys {
		if expanded[k] {
			out[k] = true
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// RowKeys returns the key of every row in order. Repeated identical places
// get an ordinal suffix so each row still toggles on its own.
func RowKeys(results []geocode.Result) []RowKey {
	if len(results) == 0 {
		return nil
	}

	keys := make([]RowKey, len(results))
	seen := make(map[string]int, len(results))

	for i, r := range results {
		base := strings.Join([]string{r.Name, r.Country, r.State, r.Point().Key()}, "|")

		n := seen[base]
		seen[base] = n + 1

		keys[i] = RowKey(base + "#" + strconv.Itoa(n))
	}

	return keys
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
