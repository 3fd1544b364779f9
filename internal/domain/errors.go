package domain

import "errors"

// Failure taxonomy for a pipeline run. Adapters wrap their failures with one
// of these sentinels; the orchestrator is the only component that decides
// whether a run continues or aborts.
var (
	// ErrQuotaExceeded means the comment feed refused the request because the
	// API quota is exhausted. Fatal for the current run; the stored cursor
	// lets a later run resume.
	ErrQuotaExceeded = errors.New("comment feed quota exceeded")

	// ErrTransientFetch means a page fetch kept failing after bounded
	// retries. Fatal for the current run.
	ErrTransientFetch = errors.New("transient comment fetch failure")

	// ErrClassification means classification of a single comment failed. The
	// comment is skipped and retried on a future run since no verdict was
	// stored.
	ErrClassification = errors.New("classification failed")

	// ErrStore means a persistence operation failed. Fatal for the run; the
	// cursor must not advance past unpersisted data.
	ErrStore = errors.New("store operation failed")

	// ErrRunInProgress means another run already holds the per-video lock.
	ErrRunInProgress = errors.New("analysis already in progress for video")

	// ErrInvalidVideoID means the supplied video identifier is malformed.
	ErrInvalidVideoID = errors.New("invalid video id")
)
