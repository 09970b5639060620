package domain

import "time"

// JobState is the locally observed lifecycle of a remote video job. The
// provider remains the source of truth; this is only a view of what the
// orchestrator last saw.
type JobState string

const (
	JobStateSubmitted JobState = "submitted"
	JobStatePolling   JobState = "polling"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
	JobStateTimedOut  JobState = "timed_out"
)

// Terminal reports whether no further transitions are expected.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateSucceeded, JobStateFailed, JobStateTimedOut:
		return true
	}
	return false
}

// VideoJob is the tracked view of one video generation.
type VideoJob struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	RemoteID  string    `json:"remoteId,omitempty"`
	State     JobState  `json:"state"`
	Attempts  int       `json:"attempts"`
	ResultURL string    `json:"resultUrl,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
