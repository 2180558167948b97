package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Test is a quiz scoped to a course with a bounded number of attempts.
type Test struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID         string     `gorm:"type:uuid;not null;index" json:"course_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	MaxAttempts      int        `gorm:"default:1" json:"max_attempts"`
	TimeLimitMinutes *int       `json:"time_limit_minutes"`
	Deadline         *time.Time `json:"deadline"`
	CreatedAt        time.Time  `json:"created_at"`

	Questions []TestQuestion `gorm:"foreignKey:TestID" json:"-"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsPastDue reports whether the test deadline has passed, compared in the
// deadline's own location.
func (t Test) IsPastDue(reference time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return reference.In(t.Deadline.Location()).After(*t.Deadline)
}

// QuestionOptions is the JSON payload stored per question: the choice list
// and the index of the correct choice.
type QuestionOptions struct {
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// TestQuestion belongs to a test; the answer key lives inside Options.
type TestQuestion struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	TestID       string         `gorm:"type:uuid;not null;index" json:"test_id"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	Options      datatypes.JSON `gorm:"not null" json:"options"`
	Order        int            `gorm:"column:position;not null" json:"order"`
	Points       float64        `gorm:"default:1" json:"points"`
}

func (q *TestQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// DecodeOptions parses the stored options payload.
func (q TestQuestion) DecodeOptions() (QuestionOptions, error) {
	var opts QuestionOptions
	if len(q.Options) == 0 {
		return opts, nil
	}
	err := json.Unmarshal(q.Options, &opts)
	return opts, err
}

// EncodeOptions serializes the options payload onto the question.
func (q *TestQuestion) EncodeOptions(opts QuestionOptions) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(data)
	return nil
}

// TestAttempt stores one graded run of a test, with the max-score snapshot
// taken at attempt time.
type TestAttempt struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	TestID      string            `gorm:"type:uuid;not null;index" json:"test_id"`
	StudentID   string            `gorm:"type:uuid;not null;index" json:"student_id"`
	Answers     datatypes.JSONMap `gorm:"not null" json:"answers"`
	Score       float64           `gorm:"default:0" json:"score"`
	MaxScore    float64           `json:"max_score"`
	IsPassed    bool              `gorm:"default:false" json:"is_passed"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
}

func (a *TestAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	return nil
}
