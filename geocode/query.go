// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/geoform/reference"
)

// DefaultLimit is sent as the limit parameter. The service may ignore it, so
// the number of returned matches is never enforced.
const DefaultLimit = 5

// Query holds the user input of one search. Only City is required; State and
// Country narrow the search.
type Query struct {
	City    string `json:"city"              form:"city"    validate:"required"`
	State   string `json:"state,omitempty"   form:"state"   validate:"omitempty,usstate"`
	Country string `json:"country,omitempty" form:"country" validate:"omitempty,countrycode"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func queryValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails on empty tags or nil funcs.
		_ = v.RegisterValidation("usstate", func(fl validator.FieldLevel) bool {
			return reference.IsStateCode(fl.Field().String())
		})
		_ = v.RegisterValidation("countrycode", func(fl validator.FieldLevel) bool {
			return reference.IsCountryCode(fl.Field().String())
		})

		validate = v
	})

	return validate
}

// Normalize trims whitespace and upper-cases the codes.
func (q Query) Normalize() Query {
	return Query{
		City:    strings.TrimSpace(q.City),
		State:   strings.ToUpper(strings.TrimSpace(q.State)),
		Country: strings.ToUpper(strings.TrimSpace(q.Country)),
	}
}

// Validate checks the normalized query. A whitespace-only city is missing.
func (q Query) Validate() error {
	q = q.Normalize()

	err := queryValidator().Struct(q)
	if err == nil {
		if q.State != "" && q.Country != reference.USCode {
			return &GeocodingError{
				Type:    ErrorTypeValidation,
				Message: "State is only applicable for the U.S.",
			}
		}

		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &GeocodingError{Type: ErrorTypeValidation, Message: MessageCityRequired, Err: err}
	}

	msg := MessageCityRequired

	switch verrs[0].Field() {
	case "State":
		msg = "State is not a U.S. state code."
	case "Country":
		msg = "Country is not a known country code."
	}

	return &GeocodingError{Type: ErrorTypeValidation, Message: msg, Err: err}
}

// Params assembles the request parameters. Unset filters are sent empty.
func (q Query) Params() url.Values {
	q = q.Normalize()

	params := url.Values{}
	params.Set("city", q.City)
	params.Set("state", q.State)
	params.Set("country", q.Country)
	params.Set("limit", strconv.Itoa(DefaultLimit))

	return params
}
