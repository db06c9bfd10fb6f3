package roaring32

import "errors"

var (
	// ErrRunContainer is returned when a serialized stream uses the
	// run-length container layout. The stream is valid roaring data,
	// this implementation just does not support that layout.
	ErrRunContainer = errors.New("roaring32: run containers are not supported")

	// ErrUnknownFormat is returned when a serialized stream starts with
	// an unrecognized cookie value.
	ErrUnknownFormat = errors.New("roaring32: unknown cookie value")

	// ErrTooManyContainers is returned when a serialized stream declares
	// more containers than the 16-bit key space allows.
	ErrTooManyContainers = errors.New("roaring32: container count exceeds maximum")
)
