package service

import "errors"

var (
	// ErrValidation marks malformed caller input. Never retried.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a referenced asset the store does not know about.
	ErrNotFound = errors.New("asset stream not found")
	// ErrStore marks a persistence layer failure.
	ErrStore = errors.New("store failure")
)
