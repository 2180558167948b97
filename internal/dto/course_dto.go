package dto

import (
	"time"

	"github.com/studiumhq/studium-api/internal/models"
)

// CourseListItem is one enrolled course in the student's course list.
type CourseListItem struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	TeacherID       string     `json:"teacher_id"`
	TeacherName     string     `json:"teacher_name"`
	Progress        float64    `json:"progress"`
	Status          string     `json:"status"`
	NearestDeadline *time.Time `json:"nearest_deadline"`
}

// CourseListResponse wraps the student's enrolled courses.
type CourseListResponse struct {
	Courses []CourseListItem `json:"courses"`
}

// DeadlineItem is one upcoming deadline inside a course overview.
type DeadlineItem struct {
	Type     string    `json:"type"`
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// CourseOverviewResponse is the course summary shown on its landing page.
type CourseOverviewResponse struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	TeacherID        string         `json:"teacher_id"`
	TeacherName      string         `json:"teacher_name"`
	Progress         float64        `json:"progress"`
	ModulesCount     int            `json:"modules_count"`
	AssignmentsCount int            `json:"assignments_count"`
	TestsCount       int            `json:"tests_count"`
	NearestDeadlines []DeadlineItem `json:"nearest_deadlines"`
}

// NewCourseListItem builds a list entry from an enrollment with its course
// preloaded.
func NewCourseListItem(enrollment models.StudentCourse, nearest *time.Time) CourseListItem {
	item := CourseListItem{
		ID:              enrollment.CourseID,
		Progress:        enrollment.Progress,
		Status:          enrollment.Status,
		NearestDeadline: nearest,
	}
	if enrollment.Course != nil {
		item.Title = enrollment.Course.Title
		item.Description = enrollment.Course.Description
		item.TeacherID = enrollment.Course.TeacherID
		if enrollment.Course.Teacher != nil {
			item.TeacherName = enrollment.Course.Teacher.FullName()
		}
	}
	return item
}
