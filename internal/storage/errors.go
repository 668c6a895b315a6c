package storage

import "errors"

// Common storage errors
var (
	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrMetadataNotFound indicates that a metadata key was never written
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrUnknownDriver indicates an unsupported storage driver in configuration
	ErrUnknownDriver = errors.New("unknown storage driver")
)
