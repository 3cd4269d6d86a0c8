package graph

import "errors"

var (
	// ErrInvalidOperation reports a structural misuse by the caller, such as
	// disconnecting an output socket or linking two inputs.
	ErrInvalidOperation = errors.New("invalid graph operation")

	// ErrUnknownKind is returned when the catalog has no layout for a kind.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrDeleted is returned when operating on a node that was deleted.
	ErrDeleted = errors.New("node was deleted")
)
