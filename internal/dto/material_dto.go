package dto

import "github.com/studiumhq/studium-api/internal/models"

// MaterialItem is one material inside the course tree.
type MaterialItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Order       int    `json:"order"`
}

// ModuleItem is one ordered module with its ordered materials.
type ModuleItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Order       int            `json:"order"`
	Materials   []MaterialItem `json:"materials"`
}

// CourseMaterialsResponse is the full module/material tree of a course.
type CourseMaterialsResponse struct {
	Modules []ModuleItem `json:"modules"`
}

// RelatedAssignment is a lightweight link from a material to an assignment.
type RelatedAssignment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MaterialDetailResponse is a single material with the caller's progress.
type MaterialDetailResponse struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Type               string              `json:"type"`
	ContentURL         string              `json:"content_url"`
	ContentText        string              `json:"content_text"`
	ModuleID           string              `json:"module_id"`
	ModuleTitle        string              `json:"module_title"`
	CourseID           string              `json:"course_id"`
	ProgressPercent    float64             `json:"progress_percent"`
	IsCompleted        bool                `json:"is_completed"`
	RelatedAssignments []RelatedAssignment `json:"related_assignments"`
}

// MaterialProgressRequest upserts the caller's progress on a material.
type MaterialProgressRequest struct {
	ProgressPercent float64 `json:"progress_percent" validate:"min=0,max=100"`
	IsCompleted     bool    `json:"is_completed"`
}

// NewModuleItem converts a module with preloaded materials into a DTO.
func NewModuleItem(module models.Module) ModuleItem {
	materials := make([]MaterialItem, 0, len(module.Materials))
	for _, material := range module.Materials {
		materials = append(materials, MaterialItem{
			ID:          material.ID,
			Title:       material.Title,
			Description: material.Description,
			Type:        material.Type,
			Order:       material.Order,
		})
	}
	return ModuleItem{
		ID:          module.ID,
		Title:       module.Title,
		Description: module.Description,
		Order:       module.Order,
		Materials:   materials,
	}
}
