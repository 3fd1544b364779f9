package domain

// RunStatus is the terminal outcome of a pipeline run.
type RunStatus string

const (
	// RunStatusDone means the comment feed was walked to exhaustion. The
	// Skipped list may still name comments whose classification failed;
	// they retry on a future run.
	RunStatusDone RunStatus = "done"
	// RunStatusPartial means the run was cancelled between pages. Every
	// committed page stands and a later run resumes from the cursor.
	RunStatusPartial RunStatus = "partial"
	// RunStatusFailed means the run aborted; the last committed aggregate
	// still stands.
	RunStatusFailed RunStatus = "failed"
)

// RunResult is what a pipeline run returns to its caller.
type RunResult struct {
	RunID   string    `json:"run_id"`
	VideoID string    `json:"video_id"`
	Status  RunStatus `json:"status"`
	// Aggregate is the last committed aggregate, or nil when nothing has
	// ever been committed for the video.
	Aggregate *Aggregate `json:"aggregate,omitempty"`
	// Skipped lists comment IDs whose classification failed this run.
	Skipped []string `json:"skipped,omitempty"`
	// Err is the failure reason for RunStatusFailed results.
	Err error `json:"-"`
}
