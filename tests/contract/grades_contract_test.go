package contract_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/handler"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
	"github.com/studiumhq/studium-api/internal/service"
)

func TestCourseGradesContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "grades_report.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.StudentCourse{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAttempt{},
	))

	teacher := models.User{Email: "teacher@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)
	student := models.User{Email: "student@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Title: "Algebra", TeacherID: teacher.ID, Status: models.CourseStatusActive}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.StudentCourse{
		StudentID: student.ID,
		CourseID:  course.ID,
		Status:    models.CourseStatusActive,
	}).Error)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)
	score := 85.0
	gradedAt := time.Now().UTC()
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Comment:      "done",
		Score:        &score,
		Status:       models.SubmissionStatusGraded,
		GradedAt:     &gradedAt,
	}).Error)

	quiz := models.Test{CourseID: course.ID, Title: "Midterm", MaxAttempts: 2}
	require.NoError(t, db.Create(&quiz).Error)
	completedAt := time.Now().UTC()
	require.NoError(t, db.Create(&models.TestAttempt{
		TestID:      quiz.ID,
		StudentID:   student.ID,
		Answers:     map[string]interface{}{},
		Score:       8,
		MaxScore:    10,
		IsPassed:    true,
		CompletedAt: &completedAt,
	}).Error)

	untaken := models.Test{CourseID: course.ID, Title: "Final", MaxAttempts: 1}
	require.NoError(t, db.Create(&untaken).Error)

	app := newGradesApp(db, student.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/courses/"+course.ID+"/grades", nil)
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func newGradesApp(db *gorm.DB, userID string) *fiber.App {
	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	tests := repository.NewTestRepository(db)
	attempts := repository.NewAttemptRepository(db)

	courseHandler := handler.NewCourseHandler(
		service.NewCourseService(courses, enrollments, assignments, tests, logger),
		service.NewMaterialService(repository.NewMaterialRepository(db), repository.NewMaterialProgressRepository(db), enrollments, validate, logger),
		service.NewAssignmentService(assignments, submissions, enrollments, nil, logger),
		service.NewQuizService(tests, attempts, enrollments, validate, logger),
		service.NewGradeService(courses, enrollments, assignments, submissions, tests, attempts, nil, logger),
		service.NewChatService(repository.NewChannelRepository(db), repository.NewMessageRepository(db), repository.NewUserRepository(db), enrollments, nil, "", nil, validate, logger),
		logger,
	)

	app := fiber.New()
	group := app.Group("/api/courses", func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", models.RoleStudent)
		return c.Next()
	})
	courseHandler.Register(group)
	return app
}
