package dto

import (
	"time"

	"github.com/studiumhq/studium-api/internal/models"
)

// ChannelItem is one course chat channel with its unread approximation.
type ChannelItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnreadCount int64  `json:"unread_count"`
}

// ChannelsListResponse wraps a course's chat channels.
type ChannelsListResponse struct {
	Channels []ChannelItem `json:"channels"`
}

// MessageCreateRequest posts a new message into a channel.
type MessageCreateRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// MessageResponse is one chat message with its sender's display name.
type MessageResponse struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessagesListResponse is one page of channel history in chronological
// order, with the cursor for the next (older) page.
type MessagesListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor *string           `json:"next_cursor"`
}

// NewMessageResponse converts a model with a preloaded sender into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	response := MessageResponse{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		Content:   message.Content,
		SenderID:  message.SenderID,
		CreatedAt: message.CreatedAt,
	}
	if message.Sender != nil {
		response.SenderName = message.Sender.FullName()
	}
	return response
}
