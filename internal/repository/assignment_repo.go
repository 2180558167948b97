package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

// AssignmentRepository defines read operations for assignments.
type AssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	GetByID(ctx context.Context, id string) (models.Assignment, error)
}

// SubmissionRepository persists versioned submissions. Submissions are
// never overwritten; the latest one is the current state.
type SubmissionRepository interface {
	ListByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error)
	LatestByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	CreateWithFiles(ctx context.Context, submission *models.Submission, files []models.SubmissionFile) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) LatestByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Order("submitted_at DESC").
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// CreateWithFiles persists the submission and its file records in a single
// transaction, so a failure leaves no partial submission behind.
func (r *submissionRepository) CreateWithFiles(ctx context.Context, submission *models.Submission, files []models.SubmissionFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		for i := range files {
			files[i].SubmissionID = submission.ID
			if err := tx.Create(&files[i]).Error; err != nil {
				return err
			}
		}
		submission.Files = files
		return nil
	})
}
