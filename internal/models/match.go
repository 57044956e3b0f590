package models

import "time"

// SimilarityMatch is one stored pair of submissions with a nonzero similarity
// score. SubmissionAID < SubmissionBID always holds, so every unordered pair
// appears at most once.
type SimilarityMatch struct {
	ID              string    `json:"id" db:"id"`
	AssignmentID    string    `json:"assignment_id" db:"assignment_id"`
	SubmissionAID   string    `json:"submission_a_id" db:"submission_a_id"`
	SubmissionBID   string    `json:"submission_b_id" db:"submission_b_id"`
	StudentAID      string    `json:"student_a_id" db:"student_a_id"`
	StudentAName    string    `json:"student_a_name" db:"student_a_name"`
	StudentBID      string    `json:"student_b_id" db:"student_b_id"`
	StudentBName    string    `json:"student_b_name" db:"student_b_name"`
	SimilarityScore float64   `json:"similarity_score" db:"similarity_score"`
	CheckedAt       time.Time `json:"checked_at" db:"checked_at"`
}

// ComparisonRun is the snapshot row written alongside a match set. It records
// how many submissions the run saw so reports do not need an upstream call.
type ComparisonRun struct {
	AssignmentID     string    `json:"assignment_id" db:"assignment_id"`
	TotalSubmissions int       `json:"total_submissions" db:"total_submissions"`
	CompletedAt      time.Time `json:"completed_at" db:"completed_at"`
}
