package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/content"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/dto"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/middleware"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

type stubEntitlement struct{}

func (stubEntitlement) CanPlay(context.Context, string) (bool, error) {
	return true, nil
}

func (stubEntitlement) Subscription(context.Context, string) (*models.Subscription, error) {
	return nil, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error {
	return p.err
}

type testServer struct {
	echo *echo.Echo
	url  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Debug: true,
		Game: config.GameConfig{
			Tick:                time.Hour,
			GuestTokenTTL:       time.Hour,
			WSMessagesPerSecond: 100,
			WSBurst:             100,
		},
	}

	bank, err := content.New()
	require.NoError(t, err)

	clock := engine.SystemClock{}
	store := memory.NewDocumentStore(nil)

	rooms := usecase.NewRoomUsecase(
		bank,
		clock,
		usecase.NewTickerCreator(),
		cfg.Game.Tick,
		store,
		memory.NewRoomRegistry(),
		stubEntitlement{},
	)
	t.Cleanup(rooms.Shutdown)

	identity := usecase.NewIdentityUsecase([]byte("test-secret"), cfg.Game.GuestTokenTTL, clock)

	authHandler := NewAuthHandler(cfg, identity, stubEntitlement{})
	roomHandler := NewRoomHandler(rooms)
	conns := memory.NewWSConnectionRepository()
	healthHandler := NewHealthHandler(stubPinger{}, conns)
	wsHandler := NewWebSocketHandler(
		cfg,
		rooms,
		usecase.NewGameUsecase(rooms),
		usecase.NewPresenceUsecase(rooms),
		store,
		conns,
	)

	e := echo.New()
	e.GET("/health", healthHandler.Health)
	e.POST("/api/auth/guest", authHandler.Guest)

	v1 := e.Group("/api/v1", middleware.JWTAuthMiddleware(identity))
	v1.GET("/me", authHandler.GetMe)
	v1.GET("/ws", wsHandler.Handle)
	v1.GET("/games", roomHandler.Catalog)
	v1.POST("/rooms", roomHandler.Create)
	v1.POST("/rooms/match", roomHandler.Match)
	v1.POST("/rooms/join", roomHandler.Join)
	v1.GET("/rooms/:id", roomHandler.Get)
	v1.DELETE("/rooms/:id/players/me", roomHandler.Leave)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &testServer{echo: e, url: srv.URL}
}

// do выполняет запрос через echo без сети
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(raw)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) guest(t *testing.T, name string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/guest", "", dto.GuestRequest{DisplayName: name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp.Token
}

func (s *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(s.url, "http") + "/api/v1/ws"

	header := http.Header{}
	header.Set("Cookie", middleware.CookieName+"="+token)

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func send(t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": eventType, "data": json.RawMessage(raw)}))
}

// readUntil читает события, пока не встретит нужный тип и match не вернет true
func readUntil(t *testing.T, conn *websocket.Conn, eventType string, match func(raw json.RawMessage) bool) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", eventType)

		if msg.Type != eventType {
			continue
		}

		if match == nil || match(msg.Data) {
			return msg.Data
		}
	}
}
