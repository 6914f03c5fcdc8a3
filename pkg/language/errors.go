package language

import "errors"

var (
	// ErrNoConverter is returned when a descriptor's selected engine is
	// empty or not registered. It is recoverable.
	ErrNoConverter = errors.New("no g2p converter configured")

	// ErrInvalidDescriptor is returned for descriptors that cannot be stored
	ErrInvalidDescriptor = errors.New("invalid language descriptor")
)
