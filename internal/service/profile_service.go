package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
)

// ProfileService manages the authenticated user's own account: profile
// attributes, password changes and notification settings.
type ProfileService struct {
	users    repository.UserRepository
	settings repository.NotificationSettingsRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProfileService(users repository.UserRepository, settings repository.NotificationSettingsRepository, validate *validator.Validate, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		settings: settings,
		validate: validate,
		log:      log.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the account merged with its profile row.
func (s *ProfileService) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProfileResponse(user, profile)
	return &resp, nil
}

// Update applies the provided fields, leaving absent ones untouched.
func (s *ProfileService) Update(ctx context.Context, userID string, req dto.ProfileUpdateRequest) (*dto.ProfileResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Group != nil {
		user.Group = *req.Group
	}
	if req.University != nil {
		user.University = *req.University
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if err := s.users.Update(ctx, &user); err != nil {
		return nil, err
	}

	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil || req.AvatarURL != nil {
		if err := s.users.SaveProfile(ctx, &profile); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("user_id", userID).Msg("profile updated")
	resp := dto.NewProfileResponse(user, profile)
	return &resp, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// NotificationSettings returns the user's settings row, creating the
// defaults when the row is missing.
func (s *ProfileService) NotificationSettings(ctx context.Context, userID string) (*dto.NotificationSettingsResponse, error) {
	settings, err := s.settingsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewNotificationSettingsResponse(settings)
	return &resp, nil
}

// UpdateNotificationSettings applies partial updates to the toggles.
func (s *ProfileService) UpdateNotificationSettings(ctx context.Context, userID string, req dto.NotificationSettingsUpdateRequest) (*dto.NotificationSettingsResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	settings, err := s.settingsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailAssignmentGraded != nil {
		settings.EmailAssignmentGraded = *req.EmailAssignmentGraded
	}
	if req.EmailTestGraded != nil {
		settings.EmailTestGraded = *req.EmailTestGraded
	}
	if req.EmailDeadlineReminder != nil {
		settings.EmailDeadlineReminder = *req.EmailDeadlineReminder
	}
	if req.EmailCommentAdded != nil {
		settings.EmailCommentAdded = *req.EmailCommentAdded
	}
	if req.EmailCourseAnnouncement != nil {
		settings.EmailCourseAnnouncement = *req.EmailCourseAnnouncement
	}
	if req.ReminderDaysBefore != nil {
		settings.ReminderDaysBefore = *req.ReminderDaysBefore
	}
	if err := s.settings.Save(ctx, &settings); err != nil {
		return nil, err
	}

	resp := dto.NewNotificationSettingsResponse(settings)
	return &resp, nil
}

func (s *ProfileService) profileFor(ctx context.Context, userID string) (models.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserProfile{}, err
	}
	// Accounts predating the profile table get a row on first access.
	profile = models.UserProfile{UserID: userID}
	if err := s.users.SaveProfile(ctx, &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (s *ProfileService) settingsFor(ctx context.Context, userID string) (models.NotificationSettings, error) {
	settings, err := s.settings.GetByUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotificationSettings{}, err
	}
	settings = models.DefaultNotificationSettings(userID)
	if err := s.settings.Create(ctx, &settings); err != nil {
		return models.NotificationSettings{}, err
	}
	return settings, nil
}
