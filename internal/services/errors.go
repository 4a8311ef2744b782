// Package services defines the business logic for chat orchestration, API key
// management, and the weather demo. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes happens at the handler layer.
package services

import "errors"

var (
	// ErrEmptyMessage is returned when a chat request carries a blank or
	// whitespace-only message.
	ErrEmptyMessage = errors.New("message is required")

	// ErrNoAPIKey is returned when credential resolution finds neither a
	// stored per-device key nor an ambient one. This is a server
	// configuration problem, not a user input error.
	ErrNoAPIKey = errors.New("no API key available")

	// ErrCityNotFound indicates the requested city is not in the demo
	// forecast set.
	ErrCityNotFound = errors.New("city not found")
)
