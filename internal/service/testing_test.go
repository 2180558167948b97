package service

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Course{},
		&models.StudentCourse{},
		&models.Module{},
		&models.Material{},
		&models.MaterialProgress{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAttempt{},
		&models.ChatChannel{},
		&models.Message{},
		&models.Notification{},
		&models.NotificationSettings{},
	))
	return db
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()

	user := models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, teacherID string) models.Course {
	t.Helper()

	course := models.Course{
		Title:     "Course " + uuid.NewString()[:8],
		TeacherID: teacherID,
		Status:    models.CourseStatusActive,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func enroll(t *testing.T, db *gorm.DB, studentID, courseID string) models.StudentCourse {
	t.Helper()

	enrollment := models.StudentCourse{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.CourseStatusActive,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

func timePointer(v time.Time) *time.Time {
	return &v
}

func floatPointer(v float64) *float64 {
	return &v
}
