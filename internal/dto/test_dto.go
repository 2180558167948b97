package dto

import "time"

// TestListItem is one quiz with the caller's attempt summary.
type TestListItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	MaxAttempts   int        `json:"max_attempts"`
	AttemptsCount int        `json:"attempts_count"`
	BestScore     *float64   `json:"best_score"`
	MaxScore      *float64   `json:"max_score"`
}

// TestsListResponse wraps a course's quizzes.
type TestsListResponse struct {
	Tests []TestListItem `json:"tests"`
}

// TestQuestionItem is a question as shown to the student. The correct index
// is not included here.
type TestQuestionItem struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Order        int      `json:"order"`
	Points       float64  `json:"points"`
}

// TestDetailResponse is the quiz structure shown before an attempt.
type TestDetailResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	TimeLimitMinutes *int               `json:"time_limit_minutes"`
	Deadline         *time.Time         `json:"deadline"`
	MaxAttempts      int                `json:"max_attempts"`
	Questions        []TestQuestionItem `json:"questions"`
}

// AttemptRequest maps question ids to the chosen option index.
type AttemptRequest struct {
	Answers map[string]int `json:"answers" validate:"required"`
}

// QuestionResult is the per-question grading outcome.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	UserAnswer    int    `json:"user_answer"`
	CorrectAnswer int    `json:"correct_answer"`
}

// AttemptResponse is the graded attempt returned to the student.
type AttemptResponse struct {
	Score           float64          `json:"score"`
	MaxScore        float64          `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	IsPassed        bool             `json:"is_passed"`
	QuestionResults []QuestionResult `json:"question_results"`
}
