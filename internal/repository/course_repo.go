package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

// CourseRepository defines read operations for courses.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (models.Course, error)
	GetByIDWithRelations(ctx context.Context, id string) (models.Course, error)
}

// EnrollmentRepository wraps the StudentCourse join table. Enrollment
// existence is the access gate for all course-scoped resources.
type EnrollmentRepository interface {
	Find(ctx context.Context, studentID, courseID string) (models.StudentCourse, error)
	Enrolled(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID, status string) ([]models.StudentCourse, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetByIDWithRelations(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Assignments").
		Preload("Tests").
		First(&course, "id = ?", id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Find(ctx context.Context, studentID, courseID string) (models.StudentCourse, error) {
	var enrollment models.StudentCourse
	err := r.db.WithContext(ctx).
		First(&enrollment, "student_id = ? AND course_id = ?", studentID, courseID).Error
	if err != nil {
		return models.StudentCourse{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) Enrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentCourse{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID, status string) ([]models.StudentCourse, error) {
	query := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Teacher").
		Where("student_id = ?", studentID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var enrollments []models.StudentCourse
	if err := query.Order("enrolled_at ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}
