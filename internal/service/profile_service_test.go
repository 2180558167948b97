package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

func newTestProfileService(t *testing.T) (*ProfileService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewProfileService(
		repository.NewUserRepository(db),
		repository.NewNotificationSettingsRepository(db),
		testValidator(),
		testLogger(),
	)
	return svc, db
}

func stringPointer(v string) *string {
	return &v
}

func TestProfileServiceUpdateIsPartial(t *testing.T) {
	svc, db := newTestProfileService(t)
	user := seedUser(t, db, models.RoleStudent)

	updated, err := svc.Update(context.Background(), user.ID, dto.ProfileUpdateRequest{
		FirstName: stringPointer("Ada"),
		Bio:       stringPointer("CS undergrad"),
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", updated.FirstName)
	require.Equal(t, user.LastName, updated.LastName)
	require.Equal(t, "CS undergrad", updated.Bio)

	fetched, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", fetched.FirstName)
	require.Equal(t, "CS undergrad", fetched.Bio)
}

func TestProfileServiceGetCreatesMissingProfileRow(t *testing.T) {
	svc, db := newTestProfileService(t)
	// Seeded directly, without the signup transaction that creates the
	// profile row.
	user := seedUser(t, db, models.RoleStudent)

	_, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProfileServiceChangePassword(t *testing.T) {
	svc, db := newTestProfileService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := seedUser(t, db, models.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", string(hash)).Error)

	err = svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "fresh-password",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "short",
	})
	require.ErrorIs(t, err, ErrWeakPassword)

	err = svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "fresh-password",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("fresh-password")))
}

func TestProfileServiceNotificationSettingsDefaults(t *testing.T) {
	svc, db := newTestProfileService(t)
	user := seedUser(t, db, models.RoleStudent)

	settings, err := svc.NotificationSettings(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, settings.EmailAssignmentGraded)
	require.Equal(t, 1, settings.ReminderDaysBefore)

	off := false
	days := 3
	updated, err := svc.UpdateNotificationSettings(context.Background(), user.ID, dto.NotificationSettingsUpdateRequest{
		EmailAssignmentGraded: &off,
		ReminderDaysBefore:    &days,
	})
	require.NoError(t, err)
	require.False(t, updated.EmailAssignmentGraded)
	require.Equal(t, 3, updated.ReminderDaysBefore)
	// Untouched toggles keep their defaults.
	require.True(t, updated.EmailTestGraded)
}
