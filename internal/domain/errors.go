package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnavailable indicates a required collaborator is down or not configured
	ErrUnavailable = errors.New("collaborator unavailable")
)
