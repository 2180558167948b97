package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

type stubUploader struct {
	uploads int
	fail    bool
}

func (s *stubUploader) Upload(_ context.Context, folder, name string, _ io.Reader, size int64) (UploadResult, error) {
	if s.fail {
		return UploadResult{}, errors.New("upstream rejected upload")
	}
	s.uploads++
	return UploadResult{URL: "https://cdn.example.com/" + folder + "/" + name, Name: name, Size: size}, nil
}

func newTestAssignmentService(t *testing.T, uploader FileUploader) (*AssignmentService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewEnrollmentRepository(db),
		uploader,
		testLogger(),
	)
	return svc, db
}

func seedAssignment(t *testing.T, db *gorm.DB, courseID string, deadline *time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		CourseID: courseID,
		Title:    "Essay",
		MaxScore: 100,
		Deadline: deadline,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestAssignmentServiceListDerivesStatus(t *testing.T) {
	svc, db := newTestAssignmentService(t, &stubUploader{})
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)

	past := time.Now().Add(-time.Hour)
	missed := seedAssignment(t, db, course.ID, &past)
	graded := seedAssignment(t, db, course.ID, &past)
	open := seedAssignment(t, db, course.ID, nil)

	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: graded.ID,
		StudentID:    student.ID,
		Comment:      "done",
		Score:        floatPointer(92),
		Status:       models.SubmissionStatusGraded,
		GradedAt:     timePointer(time.Now()),
	}).Error)

	list, err := svc.List(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, list.Assignments, 3)

	statuses := map[string]string{}
	scores := map[string]*float64{}
	for _, item := range list.Assignments {
		statuses[item.ID] = item.Status
		scores[item.ID] = item.Score
	}
	require.Equal(t, models.SubmissionStatusOverdue, statuses[missed.ID])
	require.Equal(t, models.SubmissionStatusGraded, statuses[graded.ID])
	require.Equal(t, models.SubmissionStatusNotStarted, statuses[open.ID])
	require.NotNil(t, scores[graded.ID])
	require.Equal(t, 92.0, *scores[graded.ID])
}

func TestAssignmentServiceSubmitCommentOnly(t *testing.T) {
	svc, db := newTestAssignmentService(t, nil)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	first, err := svc.Submit(context.Background(), student.ID, assignment.ID, "first draft", nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, first.Status)
	require.Empty(t, first.Files)

	svc.now = func() time.Time { return time.Now().Add(time.Minute) }
	second, err := svc.Submit(context.Background(), student.ID, assignment.ID, "final draft", nil)
	require.NoError(t, err)

	history, err := svc.Submissions(context.Background(), student.ID, assignment.ID)
	require.NoError(t, err)
	require.Len(t, history.Submissions, 2)
	require.Equal(t, second.ID, history.Submissions[0].ID)
	require.Equal(t, first.ID, history.Submissions[1].ID)
}

func TestAssignmentServiceSubmitAfterDeadlineIsAccepted(t *testing.T) {
	svc, db := newTestAssignmentService(t, nil)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)

	past := time.Now().Add(-time.Hour)
	assignment := seedAssignment(t, db, course.ID, &past)

	_, err := svc.Submit(context.Background(), student.ID, assignment.ID, "better late", nil)
	require.NoError(t, err)

	// The late hand-in still shows as overdue until it gets graded.
	detail, err := svc.Detail(context.Background(), student.ID, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusOverdue, detail.Status)
}

func TestAssignmentServiceSubmitRequiresContent(t *testing.T) {
	svc, db := newTestAssignmentService(t, nil)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	_, err := svc.Submit(context.Background(), student.ID, assignment.ID, "   ", nil)
	require.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestAssignmentServiceSubmitUploadsAttachments(t *testing.T) {
	uploader := &stubUploader{}
	svc, db := newTestAssignmentService(t, uploader)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	files := []*multipart.FileHeader{
		newTestFileHeader(t, "notes.txt", []byte("solution notes")),
	}
	resp, err := svc.Submit(context.Background(), student.ID, assignment.ID, "", files)
	require.NoError(t, err)
	require.Equal(t, 1, uploader.uploads)
	require.Len(t, resp.Files, 1)
	require.Equal(t, "notes.txt", resp.Files[0].FileName)
	require.Contains(t, resp.Files[0].FileURL, "submissions/"+assignment.ID+"/"+resp.ID)
}

func TestAssignmentServiceSubmitUploadFailureLeavesNothing(t *testing.T) {
	svc, db := newTestAssignmentService(t, &stubUploader{fail: true})
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	files := []*multipart.FileHeader{
		newTestFileHeader(t, "notes.txt", []byte("solution notes")),
	}
	_, err := svc.Submit(context.Background(), student.ID, assignment.ID, "", files)
	require.ErrorIs(t, err, ErrUploadFailed)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignmentServiceSubmitWithoutStorage(t *testing.T) {
	svc, db := newTestAssignmentService(t, nil)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	files := []*multipart.FileHeader{
		newTestFileHeader(t, "notes.txt", []byte("solution notes")),
	}
	_, err := svc.Submit(context.Background(), student.ID, assignment.ID, "", files)
	require.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestAssignmentServiceSubmitTooManyFiles(t *testing.T) {
	svc, db := newTestAssignmentService(t, &stubUploader{})
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	files := make([]*multipart.FileHeader, 0, maxSubmissionFiles+1)
	for i := 0; i <= maxSubmissionFiles; i++ {
		files = append(files, newTestFileHeader(t, "notes.txt", []byte("x")))
	}
	_, err := svc.Submit(context.Background(), student.ID, assignment.ID, "", files)
	require.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestAssignmentServiceRequiresEnrollment(t *testing.T) {
	svc, db := newTestAssignmentService(t, nil)
	teacher := seedUser(t, db, models.RoleTeacher)
	outsider := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	assignment := seedAssignment(t, db, course.ID, nil)

	_, err := svc.Detail(context.Background(), outsider.ID, assignment.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Submit(context.Background(), outsider.ID, assignment.ID, "hello", nil)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	files := req.MultipartForm.File["files"]
	require.Len(t, files, 1)
	return files[0]
}
