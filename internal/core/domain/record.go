package domain

import "time"

// TaskRecord is the persisted outcome of a task execution, used for
// staleness detection on the next build.
type TaskRecord struct {
	TaskID    string    `json:"task_id,omitzero"`
	Signature string    `json:"signature,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
