package dto

import "github.com/studiumhq/studium-api/internal/models"

// ProfileUpdateRequest applies partial updates to the account attributes.
type ProfileUpdateRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,max=100"`
	LastName   *string `json:"last_name" validate:"omitempty,max=100"`
	Group      *string `json:"group" validate:"omitempty,max=100"`
	University *string `json:"university" validate:"omitempty,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Timezone   *string `json:"timezone" validate:"omitempty,max=50"`
	Bio        *string `json:"bio"`
	AvatarURL  *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// ProfileResponse is the account plus its profile attributes.
type ProfileResponse struct {
	UserResponse
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// ChangePasswordRequest rotates the account password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// NotificationSettingsResponse mirrors the per-user email toggles.
type NotificationSettingsResponse struct {
	EmailAssignmentGraded   bool `json:"email_assignment_graded"`
	EmailTestGraded         bool `json:"email_test_graded"`
	EmailDeadlineReminder   bool `json:"email_deadline_reminder"`
	EmailCommentAdded       bool `json:"email_comment_added"`
	EmailCourseAnnouncement bool `json:"email_course_announcement"`
	ReminderDaysBefore      int  `json:"reminder_days_before"`
}

// NotificationSettingsUpdateRequest applies partial updates to the toggles.
type NotificationSettingsUpdateRequest struct {
	EmailAssignmentGraded   *bool `json:"email_assignment_graded"`
	EmailTestGraded         *bool `json:"email_test_graded"`
	EmailDeadlineReminder   *bool `json:"email_deadline_reminder"`
	EmailCommentAdded       *bool `json:"email_comment_added"`
	EmailCourseAnnouncement *bool `json:"email_course_announcement"`
	ReminderDaysBefore      *int  `json:"reminder_days_before" validate:"omitempty,min=0,max=30"`
}

// NewProfileResponse merges the account and profile rows into one DTO.
func NewProfileResponse(user models.User, profile models.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserResponse: NewUserResponse(user),
		Bio:          profile.Bio,
		AvatarURL:    profile.AvatarURL,
	}
}

// NewNotificationSettingsResponse converts a model into a DTO.
func NewNotificationSettingsResponse(settings models.NotificationSettings) NotificationSettingsResponse {
	return NotificationSettingsResponse{
		EmailAssignmentGraded:   settings.EmailAssignmentGraded,
		EmailTestGraded:         settings.EmailTestGraded,
		EmailDeadlineReminder:   settings.EmailDeadlineReminder,
		EmailCommentAdded:       settings.EmailCommentAdded,
		EmailCourseAnnouncement: settings.EmailCourseAnnouncement,
		ReminderDaysBefore:      settings.ReminderDaysBefore,
	}
}
