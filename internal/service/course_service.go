package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

// overviewDeadlineLimit caps the deadlines surfaced on the course overview.
const overviewDeadlineLimit = 5

// CourseService serves the student's enrolled courses and course overviews.
type CourseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	tests       repository.TestRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewCourseService(courses repository.CourseRepository, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, tests repository.TestRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		tests:       tests,
		log:         log.With().Str("component", "course_service").Logger(),
		now:         time.Now,
	}
}

// List returns the student's enrollments, optionally filtered by status,
// each annotated with the nearest upcoming deadline.
func (s *CourseService) List(ctx context.Context, studentID, status string) (*dto.CourseListResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]dto.CourseListItem, 0, len(enrollments))
	for _, enrollment := range enrollments {
		deadlines, err := s.upcomingDeadlines(ctx, enrollment.CourseID, now)
		if err != nil {
			return nil, err
		}
		var nearest *time.Time
		if len(deadlines) > 0 {
			nearest = &deadlines[0].Deadline
		}
		items = append(items, dto.NewCourseListItem(enrollment, nearest))
	}
	return &dto.CourseListResponse{Courses: items}, nil
}

// Overview returns the course summary for an enrolled student: counts,
// personal progress and the next few deadlines.
func (s *CourseService) Overview(ctx context.Context, studentID, courseID string) (*dto.CourseOverviewResponse, error) {
	course, err := s.courses.GetByIDWithRelations(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.Find(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	deadlines := upcomingDeadlines(course.Assignments, course.Tests, s.now())
	if len(deadlines) > overviewDeadlineLimit {
		deadlines = deadlines[:overviewDeadlineLimit]
	}

	resp := &dto.CourseOverviewResponse{
		ID:               course.ID,
		Title:            course.Title,
		Description:      course.Description,
		TeacherID:        course.TeacherID,
		Progress:         enrollment.Progress,
		ModulesCount:     len(course.Modules),
		AssignmentsCount: len(course.Assignments),
		TestsCount:       len(course.Tests),
		NearestDeadlines: deadlines,
	}
	if course.Teacher != nil {
		resp.TeacherName = course.Teacher.FullName()
	}
	return resp, nil
}

func (s *CourseService) upcomingDeadlines(ctx context.Context, courseID string, now time.Time) ([]dto.DeadlineItem, error) {
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	tests, err := s.tests.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return upcomingDeadlines(assignments, tests, now), nil
}

// upcomingDeadlines merges assignment and test deadlines that have not yet
// passed, sorted soonest first.
func upcomingDeadlines(assignments []models.Assignment, tests []models.Test, now time.Time) []dto.DeadlineItem {
	items := make([]dto.DeadlineItem, 0, len(assignments)+len(tests))
	for _, assignment := range assignments {
		if assignment.Deadline == nil || assignment.IsPastDue(now) {
			continue
		}
		items = append(items, dto.DeadlineItem{
			Type:     "assignment",
			ID:       assignment.ID,
			Title:    assignment.Title,
			Deadline: *assignment.Deadline,
		})
	}
	for _, test := range tests {
		if test.Deadline == nil || test.IsPastDue(now) {
			continue
		}
		items = append(items, dto.DeadlineItem{
			Type:     "test",
			ID:       test.ID,
			Title:    test.Title,
			Deadline: *test.Deadline,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Deadline.Before(items[j].Deadline) })
	return items
}
