package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
	"github.com/qrave1/Gamefinity/internal/domain/events"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
	"github.com/qrave1/Gamefinity/internal/infra/appctx"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	timerPeriod    = time.Second
	maxMessageSize = 4096
)

var (
	errMalformedMessage = errors.New("malformed message")
	errUnknownEvent     = errors.New("unknown message type")
	errNotSubscribed    = errors.New("not in a room")
	errRateLimited      = errors.New("too many messages")
)

type WebSocketHandler struct {
	cfg      *config.Config
	upgrader *websocket.Upgrader

	roomUsecase     usecase.RoomUsecase
	gameUsecase     usecase.GameUsecase
	presenceUsecase usecase.PresenceUsecase

	store      memory.DocumentStore
	wsConnRepo memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	roomUsecase usecase.RoomUsecase,
	gameUsecase usecase.GameUsecase,
	presenceUsecase usecase.PresenceUsecase,
	store memory.DocumentStore,
	wsConnRepo memory.WebsocketConnectionRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		cfg: cfg,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		roomUsecase:     roomUsecase,
		gameUsecase:     gameUsecase,
		presenceUsecase: presenceUsecase,
		store:           store,
		wsConnRepo:      wsConnRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
			slog.String(constant.UserID, identity.ID),
		)
		// upgrader уже ответил клиенту
		return nil
	}
	defer ws.Close()

	session := memory.NewSession()

	h.wsConnRepo.Add(session.ID(), identity.ID, ws)
	defer h.wsConnRepo.Remove(session.ID())

	client := newWSClient(h, session, identity)

	done := make(chan struct{})
	defer func() {
		close(done)
		client.detach()
		// хуки присутствия отмечают игрока офлайн
		session.Close()
	}()

	ws.SetReadLimit(maxMessageSize)

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.keepAlive(session.ID(), done)
	go client.writeLoop(done)

	ctx := c.Request().Context()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(identity.ID, err)
			return nil
		}

		if !client.limiter.Allow() {
			metric.IncrementWSRateLimited()
			client.sendError(errRateLimited)

			continue
		}

		msg := new(events.Message)
		if err = json.Unmarshal(raw, msg); err != nil {
			client.sendError(errMalformedMessage)
			continue
		}

		if err = client.handle(ctx, msg); err != nil {
			slog.Debug(
				"handle message",
				slog.Any(constant.Error, err),
				slog.String(constant.Event, msg.Type),
				slog.String(constant.UserID, identity.ID),
			)

			client.sendError(err)
		}
	}
}

func (h *WebSocketHandler) keepAlive(sessionID uuid.UUID, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.wsConnRepo.Ping(sessionID); err != nil {
				slog.Error("ping failed", slog.Any(constant.Error, err))
				return
			}
		case <-done:
			return
		}
	}
}

func (h *WebSocketHandler) handleWebsocketError(userID string, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			slog.Info("user disconnected from websocket", slog.String(constant.UserID, userID))
		default:
			slog.Error(
				"websocket close error",
				slog.Int("code", closeErr.Code),
				slog.String(constant.UserID, userID),
			)
		}

		return
	}

	slog.Error(
		"websocket read",
		slog.Any(constant.Error, err),
		slog.String(constant.UserID, userID),
	)
}

func decode[T any](msg *events.Message) (T, error) {
	var v T

	if len(msg.Data) == 0 {
		return v, nil
	}

	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return v, errMalformedMessage
	}

	return v, nil
}

// withTimeout ограничивает ожидание ответа актора
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
