package repositories

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateName is returned when a unique name constraint would be violated
	ErrDuplicateName = errors.New("name already exists")

	// ErrDatabaseOperation is returned when a database operation fails
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrConcurrentUpdate is returned when an optimistic update loses the race
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)
