package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

// TestRepository defines read operations for tests and their questions.
type TestRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Test, error)
	GetByIDWithQuestions(ctx context.Context, id string) (models.Test, error)
}

// AttemptRepository persists graded test attempts.
type AttemptRepository interface {
	CountByTestAndStudent(ctx context.Context, testID, studentID string) (int, error)
	BestByTestAndStudent(ctx context.Context, testID, studentID string) (*models.TestAttempt, error)
	// CreateWithinLimit inserts the attempt only while the student's attempt
	// count is below max. The count and insert share one transaction so two
	// concurrent submissions cannot both slip past the limit.
	CreateWithinLimit(ctx context.Context, attempt *models.TestAttempt, max int) (bool, error)
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository instantiates a GORM-backed repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Test, error) {
	var tests []models.Test
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *testRepository) GetByIDWithQuestions(ctx context.Context, id string) (models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&test, "id = ?", id).Error
	if err != nil {
		return models.Test{}, err
	}
	return test, nil
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates a GORM-backed repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) CountByTestAndStudent(ctx context.Context, testID, studentID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *attemptRepository) BestByTestAndStudent(ctx context.Context, testID, studentID string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := r.db.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		Order("score DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) CreateWithinLimit(ctx context.Context, attempt *models.TestAttempt, max int) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.TestAttempt{}).
			Where("test_id = ? AND student_id = ?", attempt.TestID, attempt.StudentID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if int(count) >= max {
			return nil
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
