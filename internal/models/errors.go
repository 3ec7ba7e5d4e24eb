package models

import "errors"

var (
	// ErrInvalidInput is returned when the headline or article is empty
	ErrInvalidInput = errors.New("headline and article are required")

	// ErrBackend wraps transport failures and non-success statuses from a model provider
	ErrBackend = errors.New("backend request failed")

	// ErrMalformedResponse is returned when the backend did not produce the expected function call
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrTimeout is returned when a classification exceeded its deadline
	ErrTimeout = errors.New("request timed out")
)
