package domain

import "errors"

var (
	// ErrFetchFailed covers non-2xx status, timeout, and transport errors on
	// a single fetch. The affected unit of work is skipped, never retried.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrNoComparisonTable is returned when a detail page lacks the expected
	// store-comparison block. Treated like a failed fetch for that candidate.
	ErrNoComparisonTable = errors.New("comparison table not found")

	// ErrRankerUnavailable is returned when the model call fails at the
	// transport or status level. Callers fall back to templated messages.
	ErrRankerUnavailable = errors.New("deal ranker unavailable")

	// ErrMalformedReply is returned when no parseable JSON object can be
	// located in the model reply.
	ErrMalformedReply = errors.New("malformed ranker reply")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. Callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned by repositories for missing rows.
	ErrNotFound = errors.New("not found")
)
