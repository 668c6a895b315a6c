package models

import "errors"

// Error taxonomy shared by the version store, the conflict manager and the
// HTTP layer. Package-specific errors wrap one of these and are matched
// with errors.Is.
var (
	// ErrNotFound indicates that a branch, version, tag or conflict does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a branch or tag name is taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates a request that is incompatible with the current state
	ErrInvalidState = errors.New("invalid state")

	// ErrNoChanges indicates an attempt to commit an empty operation list
	ErrNoChanges = errors.New("no changes to commit")

	// ErrVersionConflict indicates that a branch head moved between read and write
	ErrVersionConflict = errors.New("version conflict: branch head has moved")

	// ErrUnknownOperation indicates an operation variant this build does not know
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidOperation indicates a malformed operation payload
	ErrInvalidOperation = errors.New("invalid operation")
)
