package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

const (
	// unansweredSentinel marks a question the student left blank. It can
	// never collide with an option index.
	unansweredSentinel = -1
	// passThresholdPercent is the minimum percentage counted as a pass.
	passThresholdPercent = 60.0
)

// QuizService serves course quizzes and grades attempts server-side.
type QuizService struct {
	tests       repository.TestRepository
	attempts    repository.AttemptRepository
	enrollments repository.EnrollmentRepository
	validate    *validator.Validate
	log         zerolog.Logger
	now         func() time.Time
}

func NewQuizService(tests repository.TestRepository, attempts repository.AttemptRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, log zerolog.Logger) *QuizService {
	return &QuizService{
		tests:       tests,
		attempts:    attempts,
		enrollments: enrollments,
		validate:    validate,
		log:         log.With().Str("component", "quiz_service").Logger(),
		now:         time.Now,
	}
}

// List returns a course's quizzes with the caller's attempt summary. The
// best score carries the max-score snapshot taken at attempt time.
func (s *QuizService) List(ctx context.Context, studentID, courseID string) (*dto.TestsListResponse, error) {
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}

	tests, err := s.tests.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TestListItem, 0, len(tests))
	for _, test := range tests {
		count, err := s.attempts.CountByTestAndStudent(ctx, test.ID, studentID)
		if err != nil {
			return nil, err
		}
		item := dto.TestListItem{
			ID:            test.ID,
			Title:         test.Title,
			Description:   test.Description,
			Deadline:      test.Deadline,
			MaxAttempts:   test.MaxAttempts,
			AttemptsCount: count,
		}
		if count > 0 {
			best, err := s.attempts.BestByTestAndStudent(ctx, test.ID, studentID)
			if err != nil {
				return nil, err
			}
			if best != nil {
				item.BestScore = &best.Score
				item.MaxScore = &best.MaxScore
			}
		}
		items = append(items, item)
	}
	return &dto.TestsListResponse{Tests: items}, nil
}

// Detail returns the quiz structure without the answer key.
func (s *QuizService) Detail(ctx context.Context, studentID, testID string) (*dto.TestDetailResponse, error) {
	test, err := s.loadForStudent(ctx, studentID, testID)
	if err != nil {
		return nil, err
	}

	questions := make([]dto.TestQuestionItem, 0, len(test.Questions))
	for _, question := range test.Questions {
		opts, err := question.DecodeOptions()
		if err != nil {
			return nil, err
		}
		questions = append(questions, dto.TestQuestionItem{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			Options:      opts.Options,
			Order:        question.Order,
			Points:       question.Points,
		})
	}
	return &dto.TestDetailResponse{
		ID:               test.ID,
		Title:            test.Title,
		Description:      test.Description,
		TimeLimitMinutes: test.TimeLimitMinutes,
		Deadline:         test.Deadline,
		MaxAttempts:      test.MaxAttempts,
		Questions:        questions,
	}, nil
}

// SubmitAttempt grades an attempt and persists it. The attempt-limit check
// and the insert share one transaction, so concurrent submissions cannot
// exceed the limit. Attempts after the deadline are rejected.
func (s *QuizService) SubmitAttempt(ctx context.Context, studentID, testID string, req dto.AttemptRequest) (*dto.AttemptResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	test, err := s.loadForStudent(ctx, studentID, testID)
	if err != nil {
		return nil, err
	}
	if test.IsPastDue(s.now()) {
		return nil, ErrDeadlinePassed
	}

	score, maxScore := 0.0, 0.0
	results := make([]dto.QuestionResult, 0, len(test.Questions))
	answers := datatypes.JSONMap{}
	for _, question := range test.Questions {
		opts, err := question.DecodeOptions()
		if err != nil {
			return nil, err
		}
		maxScore += question.Points

		answer, ok := req.Answers[question.ID]
		if !ok {
			answer = unansweredSentinel
		}
		answers[question.ID] = answer

		correct := ok && answer == opts.Correct
		if correct {
			score += question.Points
		}
		results = append(results, dto.QuestionResult{
			QuestionID:    question.ID,
			IsCorrect:     correct,
			UserAnswer:    answer,
			CorrectAnswer: opts.Correct,
		})
	}

	percentage := 0.0
	if maxScore > 0 {
		percentage = score / maxScore * 100
	}
	passed := percentage >= passThresholdPercent

	completedAt := s.now().UTC()
	attempt := models.TestAttempt{
		TestID:      testID,
		StudentID:   studentID,
		Answers:     answers,
		Score:       score,
		MaxScore:    maxScore,
		IsPassed:    passed,
		StartedAt:   completedAt,
		CompletedAt: &completedAt,
	}
	created, err := s.attempts.CreateWithinLimit(ctx, &attempt, test.MaxAttempts)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrMaxAttemptsReached
	}

	s.log.Info().
		Str("student_id", studentID).
		Str("test_id", testID).
		Float64("score", score).
		Bool("is_passed", passed).
		Msg("test attempt graded")
	return &dto.AttemptResponse{
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      percentage,
		IsPassed:        passed,
		QuestionResults: results,
	}, nil
}

func (s *QuizService) loadForStudent(ctx context.Context, studentID, testID string) (models.Test, error) {
	test, err := s.tests.GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Test{}, ErrTestNotFound
		}
		return models.Test{}, err
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, test.CourseID); err != nil {
		return models.Test{}, err
	}
	return test, nil
}
