package models

// JobStatus is the state of a generation job as reported by the external
// service.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// GenerationResult is returned to the caller after a submission or poll.
// OutputRef is set only once the job has completed; an empty OutputRef with
// JobPending means the job is still in flight.
type GenerationResult struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	OutputRef string    `json:"output_ref,omitempty"`
}
