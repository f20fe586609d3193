package graph

import "errors"

var (
	// ErrNotFound marks a request for a node or project that does not exist
	// in the graph, including path queries with no reachable target.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks malformed caller input such as a negative
	// depth or a non-positive node cap.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceExceeded marks a graph too large for the requested
	// algorithm. Callers should filter or extract a subgraph first.
	ErrResourceExceeded = errors.New("resource exceeded")
)
