package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studiumhq/studium-api/internal/models"
)

// MaterialRepository defines read operations over modules and materials.
type MaterialRepository interface {
	ListModulesByCourse(ctx context.Context, courseID string) ([]models.Module, error)
	GetByID(ctx context.Context, id string) (models.Material, error)
	GetByIDWithRelations(ctx context.Context, id string) (models.Material, error)
}

// MaterialProgressRepository persists per-student material progress. Upserts
// are idempotent per (student, material).
type MaterialProgressRepository interface {
	Get(ctx context.Context, studentID, materialID string) (models.MaterialProgress, error)
	Upsert(ctx context.Context, progress *models.MaterialProgress) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository instantiates a GORM-backed repository.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) ListModulesByCourse(ctx context.Context, courseID string) ([]models.Module, error) {
	var modules []models.Module
	err := r.db.WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *materialRepository) GetByID(ctx context.Context, id string) (models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return models.Material{}, err
	}
	return material, nil
}

func (r *materialRepository) GetByIDWithRelations(ctx context.Context, id string) (models.Material, error) {
	var material models.Material
	err := r.db.WithContext(ctx).
		Preload("Module").
		Preload("Module.Materials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Assignment").
		First(&material, "id = ?", id).Error
	if err != nil {
		return models.Material{}, err
	}
	return material, nil
}

type materialProgressRepository struct {
	db *gorm.DB
}

// NewMaterialProgressRepository instantiates a GORM-backed repository.
func NewMaterialProgressRepository(db *gorm.DB) MaterialProgressRepository {
	return &materialProgressRepository{db: db}
}

func (r *materialProgressRepository) Get(ctx context.Context, studentID, materialID string) (models.MaterialProgress, error) {
	var progress models.MaterialProgress
	err := r.db.WithContext(ctx).
		First(&progress, "student_id = ? AND material_id = ?", studentID, materialID).Error
	if err != nil {
		return models.MaterialProgress{}, err
	}
	return progress, nil
}

// Upsert relies on the unique (student_id, material_id) index so concurrent
// updates converge on a single row.
func (r *materialProgressRepository) Upsert(ctx context.Context, progress *models.MaterialProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "material_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"progress_percent", "is_completed", "updated_at"}),
		}).
		Create(progress).Error
}
