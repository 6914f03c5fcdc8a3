package g2p

import "errors"

var (
	// ErrInvalidFactory is returned when a nil factory or one with an empty id is added
	ErrInvalidFactory = errors.New("invalid g2p factory")

	// ErrDuplicateID is returned when a factory id is already registered
	ErrDuplicateID = errors.New("g2p factory already registered")

	// ErrNotFound is returned when a remove target is not registered
	ErrNotFound = errors.New("g2p factory not found")

	// ErrInitializationFailed wraps the reason a setup hook failed
	ErrInitializationFailed = errors.New("g2p manager initialization failed")
)
