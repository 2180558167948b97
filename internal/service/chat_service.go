package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/observability"
	"github.com/studiumhq/studium-api/internal/repository"
)

const (
	chatSendBufferSize = 32
	// unreadWindow bounds the unread approximation; messages older than this
	// are never counted as unread.
	unreadWindow = 30 * 24 * time.Hour
)

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID        string
	ChannelID     string
	CorrelationID string
	Context       context.Context
}

// ChatService serves course chat: channel listings with unread counts,
// cursor-paged history, message posting and websocket delivery. Events are
// fanned out over redis pub/sub and NATS so every node sees every message.
type ChatService struct {
	channels    repository.ChannelRepository
	messages    repository.MessageRepository
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validate    *validator.Validate
	log         zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *chatHub
	nodeID      string
	now         func() time.Time
}

// chatHub tracks active websocket clients per channel.
type chatHub struct {
	mu       sync.RWMutex
	channels map[string]map[*chatClient]struct{}
	log      zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan dto.MessageResponse
	options ChatConnectionOptions
	service *ChatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type chatEvent struct {
	Source  string              `json:"source"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

func NewChatService(
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	redisClient *redis.Client,
	channelBase string,
	natsConn *nats.Conn,
	validate *validator.Validate,
	log zerolog.Logger,
) *ChatService {
	sanitizer := bluemonday.StrictPolicy()

	hub := &chatHub{
		channels: make(map[string]map[*chatClient]struct{}),
		log:      log.With().Str("component", "chat_hub").Logger(),
	}

	redisStream := ""
	natsSubject := ""
	if channelBase != "" {
		redisStream = channelBase + ":chat"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &ChatService{
		channels:    channels,
		messages:    messages,
		users:       users,
		enrollments: enrollments,
		redis:       redisClient,
		redisStream: redisStream,
		nats:        natsConn,
		natsSubject: natsSubject,
		validate:    validate,
		log:         log.With().Str("component", "chat_service").Logger(),
		tracer:      otel.Tracer("github.com/studiumhq/studium-api/internal/service/chat"),
		sanitizer:   sanitizer,
		hub:         hub,
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

// Start launches the cross-node event consumers. Both are optional; a single
// node without redis or NATS still delivers to its own clients.
func (s *ChatService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Channels lists a course's chat channels with the caller's unread counts.
func (s *ChatService) Channels(ctx context.Context, studentID, courseID string) (*dto.ChannelsListResponse, error) {
	if err := ensureEnrolled(ctx, s.enrollments, studentID, courseID); err != nil {
		return nil, err
	}

	channels, err := s.channels.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-unreadWindow)
	items := make([]dto.ChannelItem, 0, len(channels))
	for _, channel := range channels {
		unread, err := s.channels.UnreadCount(ctx, channel.ID, studentID, since)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.ChannelItem{
			ID:          channel.ID,
			Name:        channel.Name,
			Description: channel.Description,
			UnreadCount: unread,
		})
	}
	return &dto.ChannelsListResponse{Channels: items}, nil
}

// History pages backwards through a channel, returning each page in
// chronological order with a cursor for the next older page.
func (s *ChatService) History(ctx context.Context, studentID, channelID, cursor string, limit int) (*dto.MessagesListResponse, error) {
	if _, err := s.loadForStudent(ctx, studentID, channelID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByChannel(ctx, channelID, cursor, limit)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	if limit > 0 && len(messages) == limit {
		oldest := messages[len(messages)-1].ID
		nextCursor = &oldest
	}

	// Rows come newest-first; the page is served oldest-first.
	responses := make([]dto.MessageResponse, len(messages))
	for i, message := range messages {
		responses[len(messages)-1-i] = dto.NewMessageResponse(message)
	}
	return &dto.MessagesListResponse{Messages: responses, NextCursor: nextCursor}, nil
}

// Post persists a message and fans it out to connected clients and peers.
func (s *ChatService) Post(ctx context.Context, studentID, channelID string, req dto.MessageCreateRequest) (*dto.MessageResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.loadForStudent(ctx, studentID, channelID); err != nil {
		return nil, err
	}
	response, err := s.deliver(ctx, studentID, channelID, req.Content, "")
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ServeConnection attaches a websocket client to its channel and blocks
// until the connection ends. Enrollment has been checked at upgrade time.
func (s *ChatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan dto.MessageResponse, chatSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatConnectionsTotal().Inc()

	go client.writer()
	client.reader()
}

func (s *ChatService) deliver(ctx context.Context, senderID, channelID, content, correlation string) (dto.MessageResponse, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(content))
	if clean == "" {
		return dto.MessageResponse{}, fmt.Errorf("message content empty after sanitization")
	}

	attrs := []attribute.KeyValue{
		attribute.String("chat.channel_id", channelID),
		attribute.String("chat.sender_id", senderID),
	}
	if correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}
	spanCtx, span := s.tracer.Start(ctx, "chat.deliver", trace.WithAttributes(attrs...))
	defer span.End()

	message := models.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   clean,
	}
	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	if sender, err := s.users.FindByID(spanCtx, senderID); err == nil {
		message.Sender = &sender
	}

	response := dto.NewMessageResponse(message)
	s.hub.broadcast(channelID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish chat event")
	}
	observability.ChatMessagesSent().Inc()
	return response, nil
}

func (s *ChatService) publish(ctx context.Context, message dto.MessageResponse) error {
	event := chatEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *ChatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.log.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *ChatService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "studium-chat", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.log.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *ChatService) handleEvent(data []byte) {
	var event chatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.log.Warn().Err(err).Msg("invalid chat event")
		return
	}
	if event.Source == s.nodeID {
		return
	}
	s.hub.broadcast(event.Message.ChannelID, event.Message)
}

func (s *ChatService) loadForStudent(ctx context.Context, studentID, channelID string) (models.ChatChannel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ChatChannel{}, ErrChannelNotFound
		}
		return models.ChatChannel{}, err
	}
	if err := ensureEnrolled(ctx, s.enrollments, studentID, channel.CourseID); err != nil {
		return models.ChatChannel{}, err
	}
	return channel, nil
}

// Authorize reports whether the user may join the channel. Used by the
// websocket handler before the upgrade.
func (s *ChatService) Authorize(ctx context.Context, userID, channelID string) error {
	_, err := s.loadForStudent(ctx, userID, channelID)
	return err
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := client.options.ChannelID
	if _, exists := h.channels[channel]; !exists {
		h.channels[channel] = make(map[*chatClient]struct{})
	}
	h.channels[channel][client] = struct{}{}
	h.log.Debug().Str("channel_id", channel).Str("user_id", client.options.UserID).Msg("chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := client.options.ChannelID
	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}
	h.log.Debug().Str("channel_id", channel).Str("user_id", client.options.UserID).Msg("chat client disconnected")
}

func (h *chatHub) broadcast(channelID string, message dto.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.channels[channelID] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("channel_id", channelID).Str("user_id", client.options.UserID).Msg("dropping chat message for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	for {
		var payload dto.MessageCreateRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.log.Debug().Err(err).Msg("chat read loop ended")
			return
		}
		if err := c.service.validate.Struct(payload); err != nil {
			c.service.log.Warn().Err(err).Msg("invalid chat payload")
			continue
		}

		_, err := c.service.deliver(c.baseCtx, c.options.UserID, c.options.ChannelID, payload.Content, c.options.CorrelationID)
		if err != nil {
			c.service.log.Warn().Err(err).Msg("failed to process chat message")
			continue
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.log.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.log.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
