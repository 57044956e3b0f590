package models

import "time"

type StudentInfo struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type MatchEntry struct {
	ID              string      `json:"id"`
	AssignmentID    string      `json:"assignment_id"`
	SubmissionAID   string      `json:"submission_a_id"`
	SubmissionBID   string      `json:"submission_b_id"`
	SimilarityScore float64     `json:"similarity_score"`
	CheckedAt       time.Time   `json:"checked_at"`
	StudentA        StudentInfo `json:"student_a"`
	StudentB        StudentInfo `json:"student_b"`
}

// PlagiarismReport is the per-assignment report. The matches list is filtered
// by the requested threshold; the counters are computed over the full stored
// set regardless of that threshold.
type PlagiarismReport struct {
	AssignmentID          string       `json:"assignment_id"`
	TotalSubmissions      int          `json:"total_submissions"`
	TotalComparisons      int          `json:"total_comparisons"`
	Threshold             float64      `json:"threshold"`
	Matches               []MatchEntry `json:"matches"`
	HighSimilarityCount   int          `json:"high_similarity_count"`
	MediumSimilarityCount int          `json:"medium_similarity_count"`
	LastCheckedAt         *time.Time   `json:"last_checked_at,omitempty"`
}

type SubmissionMatchEntry struct {
	MatchID           string      `json:"match_id"`
	OtherSubmissionID string      `json:"other_submission_id"`
	OtherStudent      StudentInfo `json:"other_student"`
	SimilarityScore   float64     `json:"similarity_score"`
	CheckedAt         time.Time   `json:"checked_at"`
}

type SubmissionMatches struct {
	SubmissionID string                 `json:"submission_id"`
	Matches      []SubmissionMatchEntry `json:"matches"`
}
