package services

import "errors"

// Sentinel errors used to classify failures for the HTTP layer. Services wrap
// them with %w so handlers can map them with errors.Is.
var (
	// ErrInvalidArgument marks a caller mistake (empty or malformed input).
	// Never worth retrying.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage marks a failure of the underlying store. The scheduler does
	// not retry; the caller decides.
	ErrStorage = errors.New("storage error")

	// ErrNotFound marks a reference to an entity that does not exist. Review
	// recording never raises it; the question bank operations do.
	ErrNotFound = errors.New("not found")
)
