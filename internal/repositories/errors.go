package repositories

import "errors"

// Storage-level sentinels. Mongo implementations translate driver errors into
// these so services (and test fakes) never touch driver types.
var (
	ErrNotFound     = errors.New("repositories: document not found")
	ErrDuplicateKey = errors.New("repositories: duplicate key")
)
