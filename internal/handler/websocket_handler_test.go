package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockJWTValidator struct {
	companyID uuid.UUID
	err       error
}

func (m *mockJWTValidator) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	return m.companyID, m.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://canteiro.app"}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{companyID: uuid.New()}, testAllowedOrigins)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws", nil), httptest.NewRecorder())
	err := h.HandleWS(c)

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{err: errors.New("token expired")}, testAllowedOrigins)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws?token=stale", nil), httptest.NewRecorder())
	err := h.HandleWS(c)

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	companyID := uuid.New()
	h := NewWebSocketHandler(hub, &mockJWTValidator{companyID: companyID}, testAllowedOrigins)

	// plain GET without upgrade headers
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws?token=valid", nil), httptest.NewRecorder())
	err := h.HandleWS(c)

	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount(companyID))
}

func TestWebSocketHandler_ReceivesCompanyEvents(t *testing.T) {
	hub := websocket.NewHub()
	companyID := uuid.New()
	h := NewWebSocketHandler(hub, &mockJWTValidator{companyID: companyID}, testAllowedOrigins)

	e := echo.New()
	e.GET("/ws", h.HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid"
	header := http.Header{"Origin": []string{"https://canteiro.app"}}
	conn, _, err := ws.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(companyID) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(uuid.New(), websocket.ProjectDeleted(map[string]string{"id": "other"}))
	hub.Broadcast(companyID, websocket.ProjectCreated(map[string]string{"name": "Aurora"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "project.created", event.Type)
	assert.Equal(t, "Aurora", event.Payload["name"])
}

func TestWebSocketHandler_ConnectionLimit(t *testing.T) {
	hub := websocket.NewHub()
	companyID := uuid.New()
	h := NewWebSocketHandler(hub, &mockJWTValidator{companyID: companyID}, testAllowedOrigins)
	h.maxConnections = 1

	e := echo.New()
	e.GET("/ws", h.HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid"
	first, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(companyID) == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := ws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{}, testAllowedOrigins)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"https://canteiro.app", true},
		{"https://evil.example", false},
		{"https://canteiro.app.evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_IgnoresMalformedControlFrame(t *testing.T) {
	hub := websocket.NewHub()
	companyID := uuid.New()
	h := NewWebSocketHandler(hub, &mockJWTValidator{companyID: companyID}, testAllowedOrigins)

	e := echo.New()
	e.GET("/ws", h.HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(companyID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"action":"mute","entities":["budget"]}`)))
	hub.Broadcast(companyID, websocket.CategoryCreated(map[string]string{"name": "Cimento"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "category.created", event.Type)
	assert.Equal(t, 1, hub.ClientCount(companyID))
}
