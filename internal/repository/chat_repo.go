package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/models"
)

// ChannelRepository defines read operations for chat channels.
type ChannelRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.ChatChannel, error)
	GetByID(ctx context.Context, id string) (models.ChatChannel, error)
	// UnreadCount counts messages since the given time that were not sent by
	// the user. There is no per-user read cursor; this is an approximation.
	UnreadCount(ctx context.Context, channelID, userID string, since time.Time) (int64, error)
}

// MessageRepository persists channel messages.
type MessageRepository interface {
	ListByChannel(ctx context.Context, channelID, cursor string, limit int) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository instantiates a GORM-backed repository.
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ChatChannel, error) {
	var channels []models.ChatChannel
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) GetByID(ctx context.Context, id string) (models.ChatChannel, error) {
	var channel models.ChatChannel
	if err := r.db.WithContext(ctx).First(&channel, "id = ?", id).Error; err != nil {
		return models.ChatChannel{}, err
	}
	return channel, nil
}

func (r *channelRepository) UnreadCount(ctx context.Context, channelID, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("channel_id = ? AND sender_id <> ? AND created_at > ?", channelID, userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository instantiates a GORM-backed repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// ListByChannel pages backwards through history: newest first, bounded by
// the cursor message id when provided.
func (r *messageRepository) ListByChannel(ctx context.Context, channelID, cursor string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).
		Preload("Sender").
		Where("channel_id = ?", channelID)

	if cursor != "" {
		query = query.Where("id < ?", cursor)
	}

	var messages []models.Message
	err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}
