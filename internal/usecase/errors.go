package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Extraction taxonomy. Malformed extractions are a data problem and are
	// never retried via model rotation; the three provider sentinels below
	// are what rotation treats as recoverable.
	ErrMalformedExtraction   = errors.New("extraction produced a malformed scorecard")
	ErrNoCandidates          = errors.New("no extraction models available")
	ErrAllProvidersExhausted = errors.New("all extraction models exhausted")
	ErrProviderOverloaded    = errors.New("model provider overloaded")
	ErrProviderUnavailable   = errors.New("model provider temporarily unavailable")
	ErrModelNotFound         = errors.New("model not found")

	// Standings taxonomy.
	ErrUnresolvableResult = errors.New("result text does not name either team")
	ErrAmbiguousRevert    = errors.New("revert marker is ambiguous")
	ErrNothingToRevert    = errors.New("no match to revert")
	ErrDuplicateReport    = errors.New("scorecard already ingested")
)
