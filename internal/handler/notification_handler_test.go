package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
	"github.com/studiumhq/studium-api/internal/service"
)

func newNotificationApp(t *testing.T, db *gorm.DB, userID, role string) (*fiber.App, *service.NotificationService) {
	t.Helper()

	svc := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		nil,
		"",
		nil,
		testValidator(),
		testLogger(),
	)
	handler := NewNotificationHandler(svc, testLogger(), time.Second)

	app := fiber.New()
	handler.Register(app.Group("/api/notifications", asUser(userID, role)))
	return app, svc
}

func TestNotificationPublishRequiresElevatedRole(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)

	app, _ := newNotificationApp(t, db, student.ID, models.RoleStudent)

	payload, err := json.Marshal(dto.NotificationCreateRequest{
		UserID:  student.ID,
		Type:    models.NotificationCourseAnnouncement,
		Title:   "Hi",
		Message: "not allowed",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestNotificationPublishListMarkRead(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)
	teacher := seedUser(t, db, models.RoleTeacher)

	teacherApp, _ := newNotificationApp(t, db, teacher.ID, models.RoleTeacher)

	payload, err := json.Marshal(dto.NotificationCreateRequest{
		UserID:  student.ID,
		Type:    models.NotificationAssignmentGraded,
		Title:   "Essay graded",
		Message: "92 points",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := teacherApp.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var published dto.NotificationResponse
	decodeEnvelope(t, resp, &published)

	studentApp, _ := newNotificationApp(t, db, student.ID, models.RoleStudent)

	listReq := httptest.NewRequest(http.MethodGet, "/api/notifications/", nil)
	listResp, err := studentApp.Test(listReq, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list dto.NotificationsListResponse
	decodeEnvelope(t, listResp, &list)
	require.Len(t, list.Notifications, 1)
	require.False(t, list.Notifications[0].IsRead)

	readReq := httptest.NewRequest(http.MethodPost, "/api/notifications/"+published.ID+"/read", nil)
	readResp, err := studentApp.Test(readReq, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, readResp.StatusCode)
	var read dto.NotificationResponse
	decodeEnvelope(t, readResp, &read)
	require.True(t, read.IsRead)
}

func TestNotificationStreamDeliversEvents(t *testing.T) {
	db := testDB(t)
	student := seedUser(t, db, models.RoleStudent)

	app, svc := newNotificationApp(t, db, student.ID, models.RoleStudent)
	baseURL, shutdown := startTestServer(t, app)
	defer shutdown()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/notifications/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Give the stream a moment to subscribe before publishing.
	time.Sleep(200 * time.Millisecond)
	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  student.ID,
		Type:    models.NotificationDeadlineReminder,
		Title:   "Due soon",
		Message: "Essay due tomorrow",
	})
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.False(t, time.Now().After(deadline), "timed out waiting for sse event")
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var received dto.NotificationResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &received))
		require.Equal(t, published.ID, received.ID)
		require.Equal(t, "Essay due tomorrow", received.Message)
		return
	}
}
