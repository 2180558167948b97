package dto

import (
	"time"

	"github.com/studiumhq/studium-api/internal/models"
)

// NotificationCreateRequest publishes a notification to a user.
type NotificationCreateRequest struct {
	UserID   string                 `json:"user_id" validate:"required,uuid4"`
	Type     string                 `json:"type" validate:"required,oneof=assignment_graded test_graded deadline_reminder comment_added course_announcement"`
	Title    string                 `json:"title" validate:"required,max=255"`
	Message  string                 `json:"message" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NotificationResponse is one notification entry.
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	IsRead    bool                   `json:"is_read"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationsListResponse wraps one page of a user's notifications.
type NotificationsListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		Metadata:  notification.Metadata,
		CreatedAt: notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
