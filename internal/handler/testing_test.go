package handler

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

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

func testLogger() zerolog.Logger {
	return zerolog.Nop()
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

func seedEnrolledCourse(t *testing.T, db *gorm.DB, studentID string) models.Course {
	t.Helper()
	teacher := seedUser(t, db, models.RoleTeacher)
	course := models.Course{Title: "Course " + uuid.NewString()[:8], TeacherID: teacher.ID, Status: models.CourseStatusActive}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.StudentCourse{
		StudentID: studentID,
		CourseID:  course.ID,
		Status:    models.CourseStatusActive,
	}).Error)
	return course
}

// asUser injects the locals the JWT middleware would set.
func asUser(userID, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func startTestServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
