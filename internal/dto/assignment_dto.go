package dto

import (
	"time"

	"github.com/studiumhq/studium-api/internal/models"
)

// AssignmentListItem is one assignment with the caller's derived status.
type AssignmentListItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MaxScore    float64    `json:"max_score"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	Score       *float64   `json:"score"`
}

// AssignmentsListResponse wraps a course's assignments.
type AssignmentsListResponse struct {
	Assignments []AssignmentListItem `json:"assignments"`
}

// AssignmentDetailResponse is the single-assignment view.
type AssignmentDetailResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MaxScore    float64    `json:"max_score"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
}

// SubmissionFileResponse echoes the blob storage result for one attachment.
type SubmissionFileResponse struct {
	ID       string `json:"id"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// SubmissionResponse is one versioned submission.
type SubmissionResponse struct {
	ID             string                   `json:"id"`
	AssignmentID   string                   `json:"assignment_id"`
	Comment        string                   `json:"comment"`
	Score          *float64                 `json:"score"`
	TeacherComment string                   `json:"teacher_comment"`
	Status         string                   `json:"status"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	GradedAt       *time.Time               `json:"graded_at"`
	Files          []SubmissionFileResponse `json:"files"`
}

// SubmissionsListResponse is the caller's submission history, newest first.
type SubmissionsListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	files := make([]SubmissionFileResponse, 0, len(submission.Files))
	for _, file := range submission.Files {
		files = append(files, SubmissionFileResponse{
			ID:       file.ID,
			FileURL:  file.FileURL,
			FileName: file.FileName,
			FileSize: file.FileSize,
		})
	}
	return SubmissionResponse{
		ID:             submission.ID,
		AssignmentID:   submission.AssignmentID,
		Comment:        submission.Comment,
		Score:          submission.Score,
		TeacherComment: submission.TeacherComment,
		Status:         submission.Status,
		SubmittedAt:    submission.SubmittedAt,
		GradedAt:       submission.GradedAt,
		Files:          files,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
