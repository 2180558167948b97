package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission statuses. Overdue is derived at read time and never stored as
// the authoritative state.
const (
	SubmissionStatusNotStarted = "not_started"
	SubmissionStatusInProgress = "in_progress"
	SubmissionStatusSubmitted  = "submitted"
	SubmissionStatusGraded     = "graded"
	SubmissionStatusOverdue    = "overdue"
)

// Assignment belongs to a course and is optionally linked to a material.
type Assignment struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    string     `gorm:"type:uuid;not null;index" json:"course_id"`
	MaterialID  *string    `gorm:"type:uuid" json:"material_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	MaxScore    float64    `gorm:"default:100" json:"max_score"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsPastDue reports whether the deadline has already passed. Assignments
// without a deadline are never past due. The comparison happens in the
// deadline's own location.
func (a Assignment) IsPastDue(reference time.Time) bool {
	if a.Deadline == nil {
		return false
	}
	return reference.In(a.Deadline.Location()).After(*a.Deadline)
}

// DeriveStatus computes the display status from the latest submission and
// the deadline. A past deadline overrides everything except graded.
func (a Assignment) DeriveStatus(latest *Submission, reference time.Time) string {
	status := SubmissionStatusNotStarted
	if latest != nil {
		status = latest.Status
	}
	if a.IsPastDue(reference) && status != SubmissionStatusGraded {
		status = SubmissionStatusOverdue
	}
	return status
}

// Submission is one versioned hand-in of an assignment by a student. The
// most recently submitted row is the current one.
type Submission struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID   string     `gorm:"type:uuid;not null;index" json:"assignment_id"`
	StudentID      string     `gorm:"type:uuid;not null;index" json:"student_id"`
	Comment        string     `gorm:"type:text" json:"comment"`
	Score          *float64   `json:"score"`
	TeacherComment string     `gorm:"type:text" json:"teacher_comment"`
	Status         string     `gorm:"size:20;default:submitted" json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	GradedAt       *time.Time `json:"graded_at"`

	Files []SubmissionFile `gorm:"foreignKey:SubmissionID" json:"files"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// SubmissionFile records one attachment stored in the external blob storage.
type SubmissionFile struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID string    `gorm:"type:uuid;not null;index" json:"submission_id"`
	FileURL      string    `gorm:"size:500;not null" json:"file_url"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileSize     int64     `json:"file_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func (f *SubmissionFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return nil
}
