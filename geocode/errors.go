// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// User-visible messages. Every failure collapses into one of these.
const (
	MessageCityRequired = "City is required."
	MessageNoResults    = "No results found."
	MessageFetchFailed  = "Error fetching data"
)

// ErrorType classifies geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation the query was rejected before any network call.
	ErrorTypeValidation
	// ErrorTypeEmptyResult the service answered with zero matches.
	ErrorTypeEmptyResult
	// ErrorTypeTransport network, status or decoding failure.
	ErrorTypeTransport
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeEmptyResult:
		return "empty_result"
	case ErrorTypeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// GeocodingError carries the category of a failed search.
type GeocodingError struct {
	Type ErrorType
	// Message is safe to show to users for ErrorTypeValidation; for the
	// other types it is diagnostic only.
	Message string
	// StatusCode is set when the service answered with a non-2xx status.
	StatusCode int
	Err        error
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorType(err error) ErrorType {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}

	return ErrorTypeUnknown
}

// IsValidationError reports whether err was produced by query validation.
func IsValidationError(err error) bool {
	return errorType(err) == ErrorTypeValidation
}

// IsEmptyResultError reports whether err means a valid query had no matches.
func IsEmptyResultError(err error) bool {
	return errorType(err) == ErrorTypeEmptyResult
}

// IsTransportError reports whether err is a network, status or parse failure.
// Unclassified errors count as transport errors.
func IsTransportError(err error) bool {
	t := errorType(err)

	return t == ErrorTypeTransport || (err != nil && t == ErrorTypeUnknown)
}

// UserMessage maps any search error to the single message shown to users.
func UserMessage(err error) string {
	var geoErr *GeocodingError
	if !errors.As(err, &geoErr) {
		return MessageFetchFailed
	}

	switch geoErr.Type {
	case ErrorTypeValidation:
		return geoErr.Message
	case ErrorTypeEmptyResult:
		return MessageNoResults
	default:
		return MessageFetchFailed
	}
}

// ClassifyHTTPError turns a non-2xx answer into a transport error. The
// detail only reaches logs; users always see MessageFetchFailed.
func ClassifyHTTPError(statusCode int, body string) *GeocodingError {
	var msg string

	switch statusCode {
	case http.StatusTooManyRequests:
		msg = "rate limit reached"
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "access denied"
	case http.StatusBadRequest:
		msg = "request rejected"
	case http.StatusNotFound:
		msg = "endpoint not found"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		msg = "service unavailable"
	default:
		msg = "unexpected status"
	}

	msg = fmt.Sprintf("geocoding service: %s (HTTP %d)", msg, statusCode)
	if body != "" {
		msg += ": " + body
	}

	return &GeocodingError{
		Type:       ErrorTypeTransport,
		Message:    msg,
		StatusCode: statusCode,
	}
}
