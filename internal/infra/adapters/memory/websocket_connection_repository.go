package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
)

const writeWait = 10 * time.Second

var ErrConnectionNotFound = errors.New("websocket connection not found")

// JSONConn - часть *websocket.Conn, которая нужна для записи
type JSONConn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
}

// WebsocketConnectionRepository хранит активные соединения по id сессии
type WebsocketConnectionRepository interface {
	Add(sessionID uuid.UUID, userID string, conn JSONConn)
	Remove(sessionID uuid.UUID)

	Write(sessionID uuid.UUID, payload any) error
	Ping(sessionID uuid.UUID) error
	Count() int
}

type safeWS struct {
	userID string
	conn   JSONConn
	mu     sync.Mutex
}

type wsConnectionRepository struct {
	// wsConns хранит map[session_id]*ws.conn
	wsConns map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]*safeWS, 10),
	}
}

func (w *wsConnectionRepository) Add(sessionID uuid.UUID, userID string, conn JSONConn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.wsConns[sessionID]; !exists {
		// Увеличиваем счетчик активных WS соединений
		metric.IncrementWSActiveConnections()
	}

	w.wsConns[sessionID] = &safeWS{userID: userID, conn: conn}
}

func (w *wsConnectionRepository) Remove(sessionID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.wsConns[sessionID]; exists {
		delete(w.wsConns, sessionID)

		metric.DecrementWSActiveConnections()
	}
}

func (w *wsConnectionRepository) Write(sessionID uuid.UUID, payload any) error {
	safews, ok := w.getSafeWS(sessionID)
	if !ok {
		return ErrConnectionNotFound
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	if err := safews.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	if err := safews.conn.WriteJSON(payload); err != nil {
		slog.Error(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.String(constant.UserID, safews.userID),
		)

		return fmt.Errorf("write json: %w", err)
	}

	return nil
}

func (w *wsConnectionRepository) Ping(sessionID uuid.UUID) error {
	safews, ok := w.getSafeWS(sessionID)
	if !ok {
		return ErrConnectionNotFound
	}

	return safews.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w *wsConnectionRepository) getSafeWS(sessionID uuid.UUID) (*safeWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[sessionID]
	return conn, ok
}

func (w *wsConnectionRepository) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.wsConns)
}
