package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material types.
const (
	MaterialTypeVideo = "video"
	MaterialTypeText  = "text"
	MaterialTypeFile  = "file"
	MaterialTypeScorm = "scorm"
)

// Module is an ordered section of a course holding ordered materials.
type Module struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    string    `gorm:"type:uuid;not null;index" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:position;not null" json:"order"`
	CreatedAt   time.Time `json:"created_at"`

	Materials []Material `gorm:"foreignKey:ModuleID" json:"-"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Material carries either an external content URL or inline text, depending
// on its type.
type Material struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    string    `gorm:"type:uuid;not null;index" json:"module_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	ContentURL  string    `gorm:"size:500" json:"content_url"`
	ContentText string    `gorm:"type:text" json:"content_text"`
	Order       int       `gorm:"column:position;not null" json:"order"`
	CreatedAt   time.Time `json:"created_at"`

	Module     *Module     `gorm:"foreignKey:ModuleID" json:"-"`
	Assignment *Assignment `gorm:"foreignKey:MaterialID" json:"-"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MaterialProgress tracks a single student's progress through a material.
// At most one row exists per (student, material) pair; updates overwrite.
type MaterialProgress struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       string    `gorm:"type:uuid;not null;index:idx_student_material,unique" json:"student_id"`
	MaterialID      string    `gorm:"type:uuid;not null;index:idx_student_material,unique" json:"material_id"`
	ProgressPercent float64   `gorm:"default:0" json:"progress_percent"`
	IsCompleted     bool      `gorm:"default:false" json:"is_completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *MaterialProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
