package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationAssignmentGraded   = "assignment_graded"
	NotificationTestGraded         = "test_graded"
	NotificationDeadlineReminder   = "deadline_reminder"
	NotificationCommentAdded       = "comment_added"
	NotificationCourseAnnouncement = "course_announcement"
)

// Notification is delivered to a single user. Metadata carries free-form
// references to the related course, assignment or test.
type Notification struct {
	ID        string            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string            `gorm:"size:50;not null" json:"type"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	IsRead    bool              `gorm:"default:false" json:"is_read"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationSettings holds the per-user email toggles, one row per user,
// created with defaults at signup.
type NotificationSettings struct {
	ID                      string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	EmailAssignmentGraded   bool      `gorm:"default:true" json:"email_assignment_graded"`
	EmailTestGraded         bool      `gorm:"default:true" json:"email_test_graded"`
	EmailDeadlineReminder   bool      `gorm:"default:true" json:"email_deadline_reminder"`
	EmailCommentAdded       bool      `gorm:"default:true" json:"email_comment_added"`
	EmailCourseAnnouncement bool      `gorm:"default:true" json:"email_course_announcement"`
	ReminderDaysBefore      int       `gorm:"default:1" json:"reminder_days_before"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (s *NotificationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DefaultNotificationSettings returns the settings created for a new user.
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:                  userID,
		EmailAssignmentGraded:   true,
		EmailTestGraded:         true,
		EmailDeadlineReminder:   true,
		EmailCommentAdded:       true,
		EmailCourseAnnouncement: true,
		ReminderDaysBefore:      1,
	}
}
