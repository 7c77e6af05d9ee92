package domain

import "errors"

// Failure kinds for one article's enrichment. Callers classify with errors.Is;
// wrapped causes keep the underlying detail.
var (
	// ErrAI marks a generation call that failed for a non-rate-limit reason.
	ErrAI = errors.New("ai call failed")

	// ErrRateLimited marks a generation call abandoned after retry exhaustion.
	ErrRateLimited = errors.New("ai rate limited")

	// ErrParse marks model output that could not be decoded into an Analysis.
	ErrParse = errors.New("unparseable ai output")

	// ErrNetwork marks a fetch, download, or upload transport failure.
	ErrNetwork = errors.New("network failure")

	// ErrWrite marks a write-back whose response lacked a post identifier.
	ErrWrite = errors.New("write-back rejected")

	// ErrNotFound marks a post id the content store does not know.
	ErrNotFound = errors.New("post not found")
)
