package dto

import "time"

// CalendarEvent is one deadline across the student's enrolled courses.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	CourseID    string    `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Datetime    time.Time `json:"datetime"`
	Description string    `json:"description"`
}

// CalendarResponse is the deadline feed, sorted ascending by time.
type CalendarResponse struct {
	Events []CalendarEvent `json:"events"`
}
