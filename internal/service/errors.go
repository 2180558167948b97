package service

import "errors"

// Sentinel errors raised by services. Handlers map each to its HTTP status:
// credential failures to 401, missing enrollment to 403, absent resources
// to 404, rule violations to 400 and storage faults to 503.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrEmailTaken          = errors.New("email already registered")
	ErrWeakPassword        = errors.New("password does not meet requirements")

	ErrNotEnrolled = errors.New("student not enrolled in course")

	ErrUserNotFound         = errors.New("user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrMaterialNotFound     = errors.New("material not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrTestNotFound         = errors.New("test not found")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrInvalidSubmission  = errors.New("invalid submission")
	ErrMaxAttemptsReached = errors.New("maximum attempts reached")
	ErrDeadlinePassed     = errors.New("deadline has passed")

	ErrStorageNotConfigured = errors.New("file storage is not configured")
	ErrUploadFailed         = errors.New("file upload failed")
)
