package service

import (
	"context"

	"github.com/studiumhq/studium-api/internal/repository"
)

// ensureEnrolled is the access gate applied before every course-scoped read
// or write. A missing enrollment is an authorization failure, distinct from
// the resource not existing.
func ensureEnrolled(ctx context.Context, enrollments repository.EnrollmentRepository, studentID, courseID string) error {
	enrolled, err := enrollments.Enrolled(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}
