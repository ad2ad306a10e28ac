package meta

import (
	"errors"
)

var (
	// ErrMalformedSegment segment record misses a mandatory field
	ErrMalformedSegment = errors.New("malformed segment record")
	// ErrMalformedServer server record misses a mandatory field
	ErrMalformedServer = errors.New("malformed server record")
	// ErrMalformedRule rule spec cannot be parsed
	ErrMalformedRule = errors.New("malformed rule spec")
	// ErrServerNotFound the server is not in the current snapshot
	ErrServerNotFound = errors.New("server not found")
	// ErrStopped the component has been stopped
	ErrStopped = errors.New("component has been stopped")
)
