package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course statuses, shared with enrollments.
const (
	CourseStatusActive    = "active"
	CourseStatusCompleted = "completed"
	CourseStatusArchived  = "archived"
)

// Course is owned by a teacher and groups modules, assignments, tests and
// chat channels.
type Course struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   string    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Status      string    `gorm:"size:20;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Teacher     *User        `gorm:"foreignKey:TeacherID" json:"-"`
	Modules     []Module     `gorm:"foreignKey:CourseID" json:"-"`
	Assignments []Assignment `gorm:"foreignKey:CourseID" json:"-"`
	Tests       []Test       `gorm:"foreignKey:CourseID" json:"-"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// StudentCourse records an enrollment. Its existence is the authorization
// gate for every course-scoped operation.
type StudentCourse struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   string     `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"student_id"`
	CourseID    string     `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"course_id"`
	Progress    float64    `gorm:"default:0" json:"progress"`
	Status      string     `gorm:"size:20;default:active" json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (sc *StudentCourse) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.EnrolledAt.IsZero() {
		sc.EnrolledAt = time.Now().UTC()
	}
	return nil
}
