package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Path update errors. These indicate a programming error at the call
	// site, not a user condition.

	// ErrInvalidTarget indicates a path update was applied to a non-record.
	ErrInvalidTarget = errors.New("invalid target: not a record")

	// ErrInvalidPath indicates a path update was given an unusable path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidDocument indicates a document failed structural validation.
	ErrInvalidDocument = errors.New("invalid document")

	// External service errors. The editor never fails because of these;
	// they are surfaced to the user as messages.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// AI assist is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUpstreamUnavailable indicates a configured external service could
	// not be reached or answered with a server error.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrRendererUnavailable indicates the headless browser could not be started.
	ErrRendererUnavailable = errors.New("PDF renderer unavailable")

	// ErrRateLimited indicates the local request budget was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
