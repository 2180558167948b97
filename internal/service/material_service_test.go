package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

func newTestMaterialService(t *testing.T) (*MaterialService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewMaterialService(
		repository.NewMaterialRepository(db),
		repository.NewMaterialProgressRepository(db),
		repository.NewEnrollmentRepository(db),
		testValidator(),
		testLogger(),
	)
	return svc, db
}

func seedModule(t *testing.T, db *gorm.DB, courseID string, order int) models.Module {
	t.Helper()
	module := models.Module{CourseID: courseID, Title: "Module", Order: order}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func seedMaterial(t *testing.T, db *gorm.DB, moduleID string, order int) models.Material {
	t.Helper()
	material := models.Material{
		ModuleID: moduleID,
		Title:    "Material",
		Type:     models.MaterialTypeText,
		Order:    order,
	}
	require.NoError(t, db.Create(&material).Error)
	return material
}

func TestMaterialServiceTreeOrdered(t *testing.T) {
	svc, db := newTestMaterialService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)

	second := seedModule(t, db, course.ID, 2)
	first := seedModule(t, db, course.ID, 1)
	later := seedMaterial(t, db, first.ID, 2)
	earlier := seedMaterial(t, db, first.ID, 1)

	tree, err := svc.Tree(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Modules, 2)
	require.Equal(t, first.ID, tree.Modules[0].ID)
	require.Equal(t, second.ID, tree.Modules[1].ID)
	require.Len(t, tree.Modules[0].Materials, 2)
	require.Equal(t, earlier.ID, tree.Modules[0].Materials[0].ID)
	require.Equal(t, later.ID, tree.Modules[0].Materials[1].ID)
}

func TestMaterialServiceDetailIncludesProgressAndAssignment(t *testing.T) {
	svc, db := newTestMaterialService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	module := seedModule(t, db, course.ID, 1)
	material := seedMaterial(t, db, module.ID, 1)

	assignment := models.Assignment{CourseID: course.ID, MaterialID: &material.ID, Title: "Linked essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)

	require.NoError(t, svc.SaveProgress(context.Background(), student.ID, material.ID, dto.MaterialProgressRequest{
		ProgressPercent: 40,
	}))

	detail, err := svc.Detail(context.Background(), student.ID, material.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, detail.CourseID)
	require.Equal(t, module.ID, detail.ModuleID)
	require.InDelta(t, 40.0, detail.ProgressPercent, 0.001)
	require.False(t, detail.IsCompleted)
	require.Len(t, detail.RelatedAssignments, 1)
	require.Equal(t, assignment.ID, detail.RelatedAssignments[0].ID)
}

func TestMaterialServiceSaveProgressUpserts(t *testing.T) {
	svc, db := newTestMaterialService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	module := seedModule(t, db, course.ID, 1)
	material := seedMaterial(t, db, module.ID, 1)

	require.NoError(t, svc.SaveProgress(context.Background(), student.ID, material.ID, dto.MaterialProgressRequest{
		ProgressPercent: 30,
	}))
	// Completion overrides whatever percentage was sent.
	require.NoError(t, svc.SaveProgress(context.Background(), student.ID, material.ID, dto.MaterialProgressRequest{
		ProgressPercent: 55,
		IsCompleted:     true,
	}))

	var count int64
	require.NoError(t, db.Model(&models.MaterialProgress{}).
		Where("student_id = ? AND material_id = ?", student.ID, material.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	detail, err := svc.Detail(context.Background(), student.ID, material.ID)
	require.NoError(t, err)
	require.InDelta(t, 100.0, detail.ProgressPercent, 0.001)
	require.True(t, detail.IsCompleted)
}

func TestMaterialServiceRejectsInvalidProgress(t *testing.T) {
	svc, db := newTestMaterialService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	student := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	enroll(t, db, student.ID, course.ID)
	module := seedModule(t, db, course.ID, 1)
	material := seedMaterial(t, db, module.ID, 1)

	err := svc.SaveProgress(context.Background(), student.ID, material.ID, dto.MaterialProgressRequest{
		ProgressPercent: 120,
	})
	require.Error(t, err)
}

func TestMaterialServiceRequiresEnrollment(t *testing.T) {
	svc, db := newTestMaterialService(t)
	teacher := seedUser(t, db, models.RoleTeacher)
	outsider := seedUser(t, db, models.RoleStudent)
	course := seedCourse(t, db, teacher.ID)
	module := seedModule(t, db, course.ID, 1)
	material := seedMaterial(t, db, module.ID, 1)

	_, err := svc.Tree(context.Background(), outsider.ID, course.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Detail(context.Background(), outsider.ID, material.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestMaterialServiceDetailUnknownMaterial(t *testing.T) {
	svc, _ := newTestMaterialService(t)

	_, err := svc.Detail(context.Background(), "whoever", "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrMaterialNotFound)
}
