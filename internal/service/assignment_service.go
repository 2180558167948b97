package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

const (
	maxSubmissionFiles    = 10
	maxSubmissionFileSize = 20 << 20 // 20 MiB per attachment
)

// blockedUploadTypes are content types never accepted as attachments,
// detected from file content rather than the client-supplied extension.
var blockedUploadTypes = []string{
	"application/x-executable",
	"application/x-msdownload",
	"application/x-dosexec",
	"application/x-mach-binary",
	"application/x-elf",
}

// AssignmentService serves assignments with derived per-student status and
// accepts versioned submissions with attachments.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	enrollments repository.EnrollmentRepository
	uploader    FileUploader
	log         zerolog.Logger
	now         func() time.Time
}

func NewAssignmentService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, enrollments repository.EnrollmentRepository, uploader FileUploader, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		submissions: submissions,
		enrollments: enrollments,
		uploader:    uploader,
		log:         log.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

// List returns a course's assignments with the caller's derived status and
// latest score.
func (s *AssignmentService) List(ctx context.Context, studentID, courseID string) (*dto.AssignmentsListResponse, error) {
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]dto.AssignmentListItem, 0, len(assignments))
	for _, assignment := range assignments {
		latest, err := s.submissions.LatestByAssignmentAndStudent(ctx, assignment.ID, studentID)
		if err != nil {
			return nil, err
		}
		item := dto.AssignmentListItem{
			ID:          assignment.ID,
			Title:       assignment.Title,
			Description: assignment.Description,
			MaxScore:    assignment.MaxScore,
			Deadline:    assignment.Deadline,
			Status:      assignment.DeriveStatus(latest, now),
		}
		if latest != nil {
			item.Score = latest.Score
		}
		items = append(items, item)
	}
	return &dto.AssignmentsListResponse{Assignments: items}, nil
}

// Detail returns one assignment with the caller's derived status.
func (s *AssignmentService) Detail(ctx context.Context, studentID, assignmentID string) (*dto.AssignmentDetailResponse, error) {
	assignment, err := s.loadForStudent(ctx, studentID, assignmentID)
	if err != nil {
		return nil, err
	}
	latest, err := s.submissions.LatestByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentDetailResponse{
		ID:          assignment.ID,
		Title:       assignment.Title,
		Description: assignment.Description,
		MaxScore:    assignment.MaxScore,
		Deadline:    assignment.Deadline,
		Status:      assignment.DeriveStatus(latest, s.now()),
	}, nil
}

// Submissions returns the caller's submission history, newest first.
func (s *AssignmentService) Submissions(ctx context.Context, studentID, assignmentID string) (*dto.SubmissionsListResponse, error) {
	if _, err := s.loadForStudent(ctx, studentID, assignmentID); err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionsListResponse{Submissions: dto.NewSubmissionResponseSlice(submissions)}, nil
}

// Submit records a new versioned submission. All attachments are uploaded to
// blob storage before anything is persisted; a failed upload leaves no
// partial submission behind. Late submissions are accepted and surface as
// overdue only in the derived status.
func (s *AssignmentService) Submit(ctx context.Context, studentID, assignmentID, comment string, files []*multipart.FileHeader) (*dto.SubmissionResponse, error) {
	if strings.TrimSpace(comment) == "" && len(files) == 0 {
		return nil, fmt.Errorf("%w: a comment or at least one file is required", ErrInvalidSubmission)
	}
	if len(files) > maxSubmissionFiles {
		return nil, fmt.Errorf("%w: at most %d files per submission", ErrInvalidSubmission, maxSubmissionFiles)
	}
	if len(files) > 0 && s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}

	if _, err := s.loadForStudent(ctx, studentID, assignmentID); err != nil {
		return nil, err
	}

	submission := models.Submission{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Comment:      comment,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  s.now().UTC(),
	}

	folder := fmt.Sprintf("submissions/%s/%s", assignmentID, submission.ID)
	records := make([]models.SubmissionFile, 0, len(files))
	for _, header := range files {
		record, err := s.uploadAttachment(ctx, folder, header)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := s.submissions.CreateWithFiles(ctx, &submission, records); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("student_id", studentID).
		Str("assignment_id", assignmentID).
		Str("submission_id", submission.ID).
		Int("files", len(records)).
		Msg("submission created")
	resp := dto.NewSubmissionResponse(submission)
	return &resp, nil
}

func (s *AssignmentService) uploadAttachment(ctx context.Context, folder string, header *multipart.FileHeader) (models.SubmissionFile, error) {
	if header.Size > maxSubmissionFileSize {
		return models.SubmissionFile{}, fmt.Errorf("%w: file %q exceeds the %d byte limit", ErrInvalidSubmission, header.Filename, maxSubmissionFileSize)
	}

	probe, err := header.Open()
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("open upload %q: %w", header.Filename, err)
	}
	detected, err := mimetype.DetectReader(probe)
	probe.Close()
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("detect content type of %q: %w", header.Filename, err)
	}
	for _, blocked := range blockedUploadTypes {
		if detected.Is(blocked) {
			return models.SubmissionFile{}, fmt.Errorf("%w: file type %s is not allowed", ErrInvalidSubmission, detected.String())
		}
	}

	file, err := header.Open()
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("open upload %q: %w", header.Filename, err)
	}
	defer file.Close()

	result, err := s.uploader.Upload(ctx, folder, header.Filename, file, header.Size)
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("%w: %s", ErrUploadFailed, header.Filename)
	}
	return models.SubmissionFile{
		FileURL:  result.URL,
		FileName: result.Name,
		FileSize: result.Size,
	}, nil
}

func (s *AssignmentService) loadForStudent(ctx context.Context, studentID, assignmentID string) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, assignment.CourseID); err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}
