package taskqueue

import "time"

// Status is the lifecycle state of a submitted task. A task starts as
// PENDING and ends in exactly one of SUCCESS or FAILURE; terminal
// states never change afterwards.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// TaskRecord is the persisted lifecycle of a question task.
type TaskRecord struct {
	ID         string
	Question   string
	Status     Status
	Result     *string // answer text, set on SUCCESS
	Error      *string // error message, set on FAILURE
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}
