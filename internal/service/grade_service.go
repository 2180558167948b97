package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/repository"
)

// gradesCacheTTL keeps the aggregated report hot for a short window; grading
// events simply age out instead of being invalidated.
const gradesCacheTTL = time.Minute

// GradeService aggregates assignment and test results into a per-course
// grade report.
type GradeService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	tests       repository.TestRepository
	attempts    repository.AttemptRepository
	cache       *redis.Client
	log         zerolog.Logger
}

func NewGradeService(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	tests repository.TestRepository,
	attempts repository.AttemptRepository,
	cache *redis.Client,
	log zerolog.Logger,
) *GradeService {
	return &GradeService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		tests:       tests,
		attempts:    attempts,
		cache:       cache,
		log:         log.With().Str("component", "grade_service").Logger(),
	}
}

// Report aggregates the student's grades for one course. Every assignment
// counts towards the maximum total; tests count only once attempted, using
// the best attempt and its max-score snapshot.
func (s *GradeService) Report(ctx context.Context, studentID, courseID string) (*dto.GradesResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("grades:%s:%s", studentID, courseID)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	report := &dto.GradesResponse{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Items:       []dto.GradeItem{},
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assignments {
		assignment := assignment
		latest, err := s.submissions.LatestByAssignmentAndStudent(ctx, assignment.ID, studentID)
		if err != nil {
			return nil, err
		}
		item := dto.GradeItem{
			AssignmentID: &assignment.ID,
			Title:        assignment.Title,
			Type:         "assignment",
			MaxScore:     &assignment.MaxScore,
		}
		report.MaxTotalScore += assignment.MaxScore
		if latest != nil && latest.Score != nil {
			item.Score = latest.Score
			item.GradedAt = latest.GradedAt
			report.TotalScore += *latest.Score
		}
		report.Items = append(report.Items, item)
	}

	tests, err := s.tests.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, test := range tests {
		test := test
		item := dto.GradeItem{
			TestID: &test.ID,
			Title:  test.Title,
			Type:   "test",
		}
		best, err := s.attempts.BestByTestAndStudent(ctx, test.ID, studentID)
		if err != nil {
			return nil, err
		}
		if best != nil {
			item.Score = &best.Score
			item.MaxScore = &best.MaxScore
			item.GradedAt = best.CompletedAt
			report.TotalScore += best.Score
			report.MaxTotalScore += best.MaxScore
		}
		report.Items = append(report.Items, item)
	}

	if report.MaxTotalScore > 0 {
		report.Percentage = report.TotalScore / report.MaxTotalScore * 100
	}

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

func (s *GradeService) fromCache(ctx context.Context, key string) *dto.GradesResponse {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Debug().Err(err).Str("key", key).Msg("grades cache read failed")
		}
		return nil
	}
	var report dto.GradesResponse
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil
	}
	return &report
}

func (s *GradeService) toCache(ctx context.Context, key string, report *dto.GradesResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, gradesCacheTTL).Err(); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("grades cache write failed")
	}
}
