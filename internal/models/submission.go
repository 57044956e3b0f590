package models

// SubmissionDocument is the read-only view of one student's submission as
// served by the submission service. One submission may bundle several files.
type SubmissionDocument struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Files       []FileRef `json:"files"`
}

type FileRef struct {
	ID   string `json:"id"`
	Path string `json:"file_path"`
}

type ListSubmissionsResponse struct {
	Submissions []SubmissionDocument `json:"submissions"`
}
