package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/repository"
)

// CalendarService flattens deadlines across all enrolled courses into one
// chronological feed.
type CalendarService struct {
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	tests       repository.TestRepository
	log         zerolog.Logger
}

func NewCalendarService(enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, tests repository.TestRepository, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		enrollments: enrollments,
		assignments: assignments,
		tests:       tests,
		log:         log.With().Str("component", "calendar_service").Logger(),
	}
}

// Events collects deadlines across the student's courses, bounded by the
// optional from/to window and sorted ascending.
func (s *CalendarService) Events(ctx context.Context, studentID string, from, to *time.Time) (*dto.CalendarResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, "")
	if err != nil {
		return nil, err
	}

	events := []dto.CalendarEvent{}
	for _, enrollment := range enrollments {
		courseTitle := ""
		if enrollment.Course != nil {
			courseTitle = enrollment.Course.Title
		}

		assignments, err := s.assignments.ListByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		for _, assignment := range assignments {
			if assignment.Deadline == nil || !inWindow(*assignment.Deadline, from, to) {
				continue
			}
			events = append(events, dto.CalendarEvent{
				ID:          assignment.ID,
				Title:       assignment.Title,
				Type:        "assignment",
				CourseID:    enrollment.CourseID,
				CourseTitle: courseTitle,
				Datetime:    *assignment.Deadline,
				Description: assignment.Description,
			})
		}

		tests, err := s.tests.ListByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		for _, test := range tests {
			if test.Deadline == nil || !inWindow(*test.Deadline, from, to) {
				continue
			}
			events = append(events, dto.CalendarEvent{
				ID:          test.ID,
				Title:       test.Title,
				Type:        "test",
				CourseID:    enrollment.CourseID,
				CourseTitle: courseTitle,
				Datetime:    *test.Deadline,
				Description: test.Description,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Datetime.Before(events[j].Datetime) })
	return &dto.CalendarResponse{Events: events}, nil
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
