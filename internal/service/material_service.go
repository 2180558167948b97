package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

// MaterialService serves the course material tree and per-student progress.
type MaterialService struct {
	materials   repository.MaterialRepository
	progress    repository.MaterialProgressRepository
	enrollments repository.EnrollmentRepository
	validate    *validator.Validate
	log         zerolog.Logger
	now         func() time.Time
}

func NewMaterialService(materials repository.MaterialRepository, progress repository.MaterialProgressRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, log zerolog.Logger) *MaterialService {
	return &MaterialService{
		materials:   materials,
		progress:    progress,
		enrollments: enrollments,
		validate:    validate,
		log:         log.With().Str("component", "material_service").Logger(),
		now:         time.Now,
	}
}

// Tree returns the ordered module/material tree of a course.
func (s *MaterialService) Tree(ctx context.Context, studentID, courseID string) (*dto.CourseMaterialsResponse, error) {
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}

	modules, err := s.materials.ListModulesByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ModuleItem, 0, len(modules))
	for _, module := range modules {
		items = append(items, dto.NewModuleItem(module))
	}
	return &dto.CourseMaterialsResponse{Modules: items}, nil
}

// Detail returns one material with the caller's progress and any assignment
// linked to it.
func (s *MaterialService) Detail(ctx context.Context, studentID, materialID string) (*dto.MaterialDetailResponse, error) {
	material, err := s.materials.GetByIDWithRelations(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	if material.Module == nil {
		return nil, ErrMaterialNotFound
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, material.Module.CourseID); err != nil {
		return nil, err
	}

	resp := &dto.MaterialDetailResponse{
		ID:                 material.ID,
		Title:              material.Title,
		Description:        material.Description,
		Type:               material.Type,
		ContentURL:         material.ContentURL,
		ContentText:        material.ContentText,
		ModuleID:           material.ModuleID,
		ModuleTitle:        material.Module.Title,
		CourseID:           material.Module.CourseID,
		RelatedAssignments: []dto.RelatedAssignment{},
	}
	if material.Assignment != nil {
		resp.RelatedAssignments = append(resp.RelatedAssignments, dto.RelatedAssignment{
			ID:    material.Assignment.ID,
			Title: material.Assignment.Title,
		})
	}

	progress, err := s.progress.Get(ctx, studentID, materialID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		resp.ProgressPercent = progress.ProgressPercent
		resp.IsCompleted = progress.IsCompleted
	}
	return resp, nil
}

// SaveProgress upserts the caller's progress on a material. Marking a
// material completed forces the percentage to 100.
func (s *MaterialService) SaveProgress(ctx context.Context, studentID, materialID string, req dto.MaterialProgressRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	material, err := s.materials.GetByIDWithRelations(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}
	if material.Module == nil {
		return ErrMaterialNotFound
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, material.Module.CourseID); err != nil {
		return err
	}

	percent := req.ProgressPercent
	if req.IsCompleted {
		percent = 100
	}
	progress := models.MaterialProgress{
		StudentID:       studentID,
		MaterialID:      materialID,
		ProgressPercent: percent,
		IsCompleted:     req.IsCompleted,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.progress.Upsert(ctx, &progress); err != nil {
		return err
	}

	s.log.Debug().
		Str("student_id", studentID).
		Str("material_id", materialID).
		Float64("progress_percent", percent).
		Msg("material progress saved")
	return nil
}
