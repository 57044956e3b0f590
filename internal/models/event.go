package models

import "time"

// CheckRequestedEvent asks the worker to recompute one assignment. Published
// by the HTTP trigger and consumed from the check queue.
type CheckRequestedEvent struct {
	AssignmentID string `json:"assignment_id"`
	RequestedBy  string `json:"requested_by,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// SubmissionCreatedEvent is emitted by the submission service. It carries the
// assignment id, which is all a full recompute needs.
type SubmissionCreatedEvent struct {
	SubmissionID string `json:"submission_id"`
	AssignmentID string `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	Timestamp    int64  `json:"timestamp"`
}

type CheckCompletedEvent struct {
	AssignmentID     string    `json:"assignment_id"`
	TotalSubmissions int       `json:"total_submissions"`
	MatchCount       int       `json:"match_count"`
	ProcessingTimeMs int       `json:"processing_time_ms"`
	CompletedAt      time.Time `json:"completed_at"`
}

type CheckFailedEvent struct {
	AssignmentID string    `json:"assignment_id"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}
