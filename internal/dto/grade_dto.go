package dto

import "time"

// GradeItem is one graded row in the course grade report: either an
// assignment or a test, never both.
type GradeItem struct {
	AssignmentID *string    `json:"assignment_id"`
	TestID       *string    `json:"test_id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	Score        *float64   `json:"score"`
	MaxScore     *float64   `json:"max_score"`
	GradedAt     *time.Time `json:"graded_at"`
}

// GradesResponse is the aggregated grade report for a course.
type GradesResponse struct {
	CourseID      string      `json:"course_id"`
	CourseTitle   string      `json:"course_title"`
	TotalScore    float64     `json:"total_score"`
	MaxTotalScore float64     `json:"max_total_score"`
	Percentage    float64     `json:"percentage"`
	Items         []GradeItem `json:"items"`
}
