package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/middleware"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
	"github.com/studiumhq/studium-api/internal/service"
)

func newChatApp(t *testing.T, db *gorm.DB, userID string) *fiber.App {
	t.Helper()

	chatService := service.NewChatService(
		repository.NewChannelRepository(db),
		repository.NewMessageRepository(db),
		repository.NewUserRepository(db),
		repository.NewEnrollmentRepository(db),
		nil,
		"",
		nil,
		testValidator(),
		testLogger(),
	)
	chatHandler := NewChatHandler(chatService, testLogger())

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	chatHandler.Register(app.Group("/api/chat/channels", asUser(userID, models.RoleStudent)))
	return app
}

func seedChatChannel(t *testing.T, db *gorm.DB, courseID string) models.ChatChannel {
	t.Helper()
	channel := models.ChatChannel{CourseID: courseID, Name: "general"}
	require.NoError(t, db.Create(&channel).Error)
	return channel
}

func TestChatWebsocketEchoesSanitizedMessage(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)
	course := seedEnrolledCourse(t, db, student.ID)
	channel := seedChatChannel(t, db, course.ID)

	app := newChatApp(t, db, student.ID)
	baseURL, shutdown := startTestServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/chat/channels/" + channel.ID + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.MessageCreateRequest{Content: "hello <b>everyone</b>"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var message dto.MessageResponse
	require.NoError(t, conn.ReadJSON(&message))
	require.Equal(t, "hello everyone", message.Content)
	require.Equal(t, student.ID, message.SenderID)
	require.Equal(t, channel.ID, message.ChannelID)

	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", message.ID).Error)
	require.Equal(t, "hello everyone", stored.Content)
}

func TestChatWebsocketRejectsOutsiders(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)
	outsider := seedUser(t, db, models.RoleStudent)
	course := seedEnrolledCourse(t, db, student.ID)
	channel := seedChatChannel(t, db, course.ID)

	app := newChatApp(t, db, outsider.ID)
	baseURL, shutdown := startTestServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/chat/channels/" + channel.ID + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	if resp != nil {
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestChatHistoryEndpoint(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)
	course := seedEnrolledCourse(t, db, student.ID)
	channel := seedChatChannel(t, db, course.ID)

	require.NoError(t, db.Create(&models.Message{
		ChannelID: channel.ID,
		SenderID:  student.ID,
		Content:   "first post",
	}).Error)

	app := newChatApp(t, db, student.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/channels/"+channel.ID+"/messages?limit=10", nil)
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page dto.MessagesListResponse
	decodeEnvelope(t, resp, &page)
	require.Len(t, page.Messages, 1)
	require.Equal(t, "first post", page.Messages[0].Content)
}

func TestChatPostEndpointValidatesBody(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)
	course := seedEnrolledCourse(t, db, student.ID)
	channel := seedChatChannel(t, db, course.ID)

	app := newChatApp(t, db, student.ID)

	body, err := json.Marshal(dto.MessageCreateRequest{Content: ""})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/channels/"+channel.ID+"/messages", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
