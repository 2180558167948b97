package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

func newTestCalendarService(t *testing.T) (*CalendarService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewCalendarService(
		repository.NewEnrollmentRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewTestRepository(db),
		testLogger(),
	)
	return svc, db
}

func TestCalendarServiceEventsAcrossCourses(t *testing.T) {
	svc, db := newTestCalendarService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	math := seedCourse(t, db, teacher.ID)
	physics := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, math.ID)
	enroll(t, db, student.ID, physics.ID)

	late := time.Now().Add(72 * time.Hour)
	early := time.Now().Add(24 * time.Hour)
	seedAssignment(t, db, math.ID, &late)
	require.NoError(t, db.Create(&models.Test{CourseID: physics.ID, Title: "Lab quiz", Deadline: &early}).Error)

	resp, err := svc.Events(context.Background(), student.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
	require.Equal(t, "test", resp.Events[0].Type)
	require.Equal(t, physics.Title, resp.Events[0].CourseTitle)
	require.Equal(t, "assignment", resp.Events[1].Type)
	require.Equal(t, math.Title, resp.Events[1].CourseTitle)
}

func TestCalendarServiceEventsWindow(t *testing.T) {
	svc, db := newTestCalendarService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)

	first := time.Now().Add(time.Hour)
	second := time.Now().Add(2 * time.Hour)
	third := time.Now().Add(3 * time.Hour)
	seedAssignment(t, db, course.ID, &first)
	inside := seedAssignment(t, db, course.ID, &second)
	seedAssignment(t, db, course.ID, &third)

	from := time.Now().Add(90 * time.Minute)
	to := time.Now().Add(150 * time.Minute)
	resp, err := svc.Events(context.Background(), student.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	require.Equal(t, inside.ID, resp.Events[0].ID)
}

func TestCalendarServiceSkipsUndatedWork(t *testing.T) {
	svc, db := newTestCalendarService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)

	seedAssignment(t, db, course.ID, nil)
	require.NoError(t, db.Create(&models.Test{CourseID: course.ID, Title: "Untimed quiz"}).Error)

	resp, err := svc.Events(context.Background(), student.ID, nil, nil)
	require.NoError(t, err)
	require.Empty(t, resp.Events)
}
