// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"fmt"

	"github.com/jcodagnone/geoform/spatial"
)

// Result is one place match as returned by the geocoding service.
type Result struct {
	Country string `json:"country"`
	Name    string `json:"name"`
	// State is optional; many non-US matches don't carry one.
	State string  `json:"state,omitempty"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	// LocalNames maps a language code to the localized place name.
	LocalNames map[string]string `json:"local_names,omitempty"`
}

// Point returns the coordinates of the match.
func (r Result) Point() spatial.Point {
	return spatial.Point{Lat: r.Lat, Lng: r.Lon}
}

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind int

const (
	// OutcomeNone no search was applied yet.
	OutcomeNone OutcomeKind = iota
	// OutcomeSuccess the service returned at least one match.
	OutcomeSuccess
	// OutcomeEmpty the service returned zero matches.
	OutcomeEmpty
	// OutcomeFailure validation or transport failure.
	OutcomeFailure
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeNone:    "none",
	OutcomeSuccess: "success",
	OutcomeEmpty:   "empty",
	OutcomeFailure: "failure",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeNames[k]; ok {
		return s
	}

	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(b []byte) error {
	for kind, name := range outcomeNames {
		if name == string(b) {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf("unknown outcome kind %q", b)
}

// Outcome is the result of one search. Results is only set for
// OutcomeSuccess and Message only for OutcomeEmpty and OutcomeFailure.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message,omitempty"`
	Results []Result    `json:"results,omitempty"`
	// Err keeps the cause of a failure for logging.
	Err error `json:"-"`
}

// Success wraps a non-empty list of matches. An empty list yields Empty.
func Success(results []Result) Outcome {
	if len(results) == 0 {
		return Empty()
	}

	return Outcome{Kind: OutcomeSuccess, Results: results}
}

// Empty is the outcome of a valid search without matches.
func Empty() Outcome {
	return Outcome{
		Kind:    OutcomeEmpty,
		Message: MessageNoResults,
		Err:     &GeocodingError{Type: ErrorTypeEmptyResult, Message: "service returned no matches"},
	}
}

// Failure converts err into its user-facing outcome.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: UserMessage(err), Err: err}
}
