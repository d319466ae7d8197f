package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/peerfeed/internal/handlers/testutil"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/services"
)

func createNotification(t *testing.T, env *testutil.Env, userID uint, title string) uint {
	t.Helper()
	resp := env.Request(http.MethodPost, "/notifications", map[string]any{
		"user_id": userID,
		"title":   title,
		"message": title + " body",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := testutil.Decode[testutil.Created](t, resp)
	require.Equal(t, "Notification created successfully", created.Message)
	return created.ID
}

func TestNotificationHandler_ListNewestFirstWithFilters(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.CreateUser("alice", "")
	bob := env.CreateUser("bob", "")

	first := createNotification(t, env, alice.ID, "first")
	second := createNotification(t, env, alice.ID, "second")
	createNotification(t, env, bob.ID, "other")

	resp := env.Request(http.MethodGet, "/notifications", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, testutil.Decode[[]services.NotificationDTO](t, resp), 3)

	resp = env.Request(http.MethodGet, fmt.Sprintf("/notifications?user_id=%d", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	items := testutil.Decode[[]services.NotificationDTO](t, resp)
	require.Len(t, items, 2)
	require.Equal(t, second, items[0].ID)
	require.Equal(t, first, items[1].ID)
	require.Equal(t, "general", items[0].Type)
	require.False(t, items[0].Read)

	resp = env.Request(http.MethodPut, fmt.Sprintf("/notifications/%d/read", first), nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.Request(http.MethodGet, fmt.Sprintf("/notifications?user_id=%d&unread=true", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	unread := testutil.Decode[[]services.NotificationDTO](t, resp)
	require.Len(t, unread, 1)
	require.Equal(t, second, unread[0].ID)

	resp = env.Request(http.MethodGet, "/notifications?user_id=abc", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestNotificationHandler_MarkReadIsIdempotent(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("gina", "")
	id := createNotification(t, env, user.ID, "ping")

	path := fmt.Sprintf("/notifications/%d/read", id)
	resp := env.Request(http.MethodPut, path, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	ack := testutil.Decode[testutil.Created](t, resp)
	require.Equal(t, id, ack.ID)
	require.Equal(t, "Notification marked as read", ack.Message)

	resp = env.Request(http.MethodGet, "/notifications", nil, "")
	before := testutil.Decode[[]services.NotificationDTO](t, resp)
	require.True(t, before[0].Read)
	require.NotNil(t, before[0].ReadAt)

	resp = env.Request(http.MethodPut, path, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.Request(http.MethodGet, "/notifications", nil, "")
	after := testutil.Decode[[]services.NotificationDTO](t, resp)
	require.True(t, after[0].ReadAt.Equal(*before[0].ReadAt))

	resp = env.Request(http.MethodPut, "/notifications/9999/read", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Notification not found", testutil.Decode[testutil.ErrorPayload](t, resp).Error)
}

func TestNotificationHandler_CreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("hank", "")

	cases := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing title", map[string]any{"user_id": user.ID, "message": "m"}, "Missing required fields"},
		{"bad type", map[string]any{"user_id": user.ID, "title": "t", "message": "m", "type": "alert"}, "Invalid notification type"},
		{"unknown user", map[string]any{"user_id": 777, "title": "t", "message": "m"}, "Unknown user"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.Request(http.MethodPost, "/notifications", tc.body, "")
			require.Equal(t, http.StatusBadRequest, resp.Code)
			require.Equal(t, tc.message, testutil.Decode[testutil.ErrorPayload](t, resp).Error)
		})
	}
}

func TestNotificationHandler_StreamDeliversNotifications(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("ivy", "")

	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/notifications/stream?token=" + env.Token(user.ID)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return env.Hub.Subscribers(realtime.StreamNotifications, user.ID) > 0
	}, 2*time.Second, 10*time.Millisecond)

	createNotification(t, env, user.ID, "live")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var message struct {
		Stream string `json:"stream"`
		Event  string `json:"event"`
		Data   struct {
			Notification services.NotificationDTO `json:"notification"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&message))
	require.Equal(t, realtime.StreamNotifications, message.Stream)
	require.Equal(t, realtime.EventNotificationCreated, message.Event)
	require.Equal(t, "live", message.Data.Notification.Title)
}

func TestNotificationHandler_StreamRequiresToken(t *testing.T) {
	env := testutil.NewEnv(t)

	resp := env.Request(http.MethodGet, "/notifications/stream", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
